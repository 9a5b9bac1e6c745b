package model

import (
	"cmp"
	"slices"
)

// Device represents a connected device and its current power allocation
type Device struct {
	// ID uniquely identifies the device within the allocator
	ID string `json:"deviceId" yaml:"deviceId"`

	// Timestamp is the logical connection order supplied by the caller
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Seq is the admission sequence assigned by the allocator, it breaks
	// ties between devices sharing the same Timestamp.
	Seq uint64 `json:"seq" yaml:"seq"`

	// CurrentUsage is the power currently granted to the device
	CurrentUsage float64 `json:"currentUsage" yaml:"currentUsage"`

	// MaxAllowed is the per-device ceiling, never above Limits.DeviceMax
	MaxAllowed float64 `json:"maxAllowed" yaml:"maxAllowed"`
}

// Headroom returns how much more power the device can take before reaching its ceiling
func (d *Device) Headroom() float64 {
	if d.CurrentUsage >= d.MaxAllowed {
		return 0
	}
	return d.MaxAllowed - d.CurrentUsage
}

// Clone returns a detached copy of the device
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	ret := *d
	return &ret
}

// Before reports whether d connected before other; ties fall back to admission order.
func (d *Device) Before(other *Device) bool {
	if d.Timestamp != other.Timestamp {
		return d.Timestamp < other.Timestamp
	}
	return d.Seq < other.Seq
}

// Devices represents a collection of devices
type Devices []*Device

// Ordered returns a copy of the collection sorted by connection order.
// The device references are shared with the receiver.
func (d Devices) Ordered() Devices {
	ret := slices.Clone(d)
	slices.SortFunc(ret, func(a, b *Device) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ret
}

// Total returns the sum of current usage across the collection.  Usages are
// summed in connection order so the result does not depend on the order the
// collection was listed in.
func (d Devices) Total() float64 {
	total := 0.0
	for _, device := range d.Ordered() {
		total += device.CurrentUsage
	}
	return total
}

// Lookup returns the device with the supplied ID or nil
func (d Devices) Lookup(id string) *Device {
	for _, device := range d {
		if device.ID == id {
			return device
		}
	}
	return nil
}
