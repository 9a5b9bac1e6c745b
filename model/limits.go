package model

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMaxCapacity is the nominal system capacity
	DefaultMaxCapacity = 100.0
	// DefaultSafeCapacity is the usable capacity enforced by the allocator
	DefaultSafeCapacity = 92.0
	// DefaultDeviceMax is the hard per-device cap
	DefaultDeviceMax = 40.0
)

// Limits defines the capacity bounds of a power budget.
//
// MaxCapacity is informational only; SafeCapacity is the ceiling the
// allocator actually respects and DeviceMax caps every single device.
type Limits struct {
	MaxCapacity  float64 `json:"maxCapacity" yaml:"maxCapacity"`
	SafeCapacity float64 `json:"safeCapacity" yaml:"safeCapacity"`
	DeviceMax    float64 `json:"deviceMax" yaml:"deviceMax"`
}

// DefaultLimits returns the default budget limits
func DefaultLimits() Limits {
	return Limits{
		MaxCapacity:  DefaultMaxCapacity,
		SafeCapacity: DefaultSafeCapacity,
		DeviceMax:    DefaultDeviceMax,
	}
}

// Validate returns aggregated error describing invalid limits or nil.
func (l Limits) Validate() error {
	var errs []error
	for _, field := range []struct {
		name  string
		value float64
	}{{"maxCapacity", l.MaxCapacity}, {"safeCapacity", l.SafeCapacity}, {"deviceMax", l.DeviceMax}} {
		if !isFinite(field.value) {
			errs = append(errs, fmt.Errorf("%v must be finite, got %v", field.name, field.value))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if l.SafeCapacity <= 0 {
		errs = append(errs, fmt.Errorf("safeCapacity must be > 0"))
	}
	if l.MaxCapacity > 0 && l.SafeCapacity > l.MaxCapacity {
		errs = append(errs, fmt.Errorf("safeCapacity %v exceeds maxCapacity %v", l.SafeCapacity, l.MaxCapacity))
	}
	if l.DeviceMax <= 0 {
		errs = append(errs, fmt.Errorf("deviceMax must be > 0"))
	}
	return errors.Join(errs...)
}

// Ceiling normalises a requested per-device ceiling: values outside (0, DeviceMax] fall back to DeviceMax.
func (l Limits) Ceiling(requested float64) float64 {
	if requested > 0 && requested <= l.DeviceMax {
		return requested
	}
	return l.DeviceMax
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
