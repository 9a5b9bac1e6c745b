package allocator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/viant/powerflux/meter"
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/policy"
	"github.com/viant/powerflux/service/dao"
	"github.com/viant/powerflux/service/dao/store"
)

// Service allocates a shared power budget across connected devices
type Service struct {
	limits   model.Limits
	registry dao.Service[string, model.Device]
	policy   *policy.Policy
	seq      uint64
}

// New creates a new allocator service
func New(options ...Option) (*Service, error) {
	ret := &Service{limits: model.DefaultLimits()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	if ret.registry == nil {
		ret.registry = NewRegistry()
	}
	return ret, nil
}

// NewRegistry returns an in-memory device registry keyed by device ID
func NewRegistry() *store.MemoryStore[string, model.Device] {
	return store.NewMemoryStore[string, model.Device](func(d *model.Device) string { return d.ID })
}

// Limits returns the budget limits
func (s *Service) Limits() model.Limits {
	return s.limits
}

// Add admits a device and returns its allocation.  The device receives
// whatever safe capacity is left, up to its ceiling; the allocation is zero
// when the budget is exhausted.
func (s *Service) Add(ctx context.Context, deviceID string, timestamp int64, options ...DeviceOption) (*Grant, error) {
	if deviceID == "" {
		return nil, ErrInvalidID
	}
	admission := &admission{}
	for _, option := range options {
		option(admission)
	}
	devices, err := s.devices(ctx)
	if err != nil {
		return nil, err
	}
	grant := &Grant{DeviceID: deviceID, Found: true}
	existing := devices.Lookup(deviceID)
	if existing != nil {
		if !s.policyOf(ctx).ReplacesDuplicates() {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateID, deviceID)
		}
		if err = s.registry.Delete(ctx, deviceID); err != nil {
			return nil, fmt.Errorf("failed to release device %v: %w", deviceID, err)
		}
		grant.Replaced = true
		grant.Released = existing.CurrentUsage
		devices = without(devices, deviceID)
	}

	ceiling := s.limits.Ceiling(admission.ceiling)
	device := &model.Device{
		ID:           deviceID,
		Timestamp:    timestamp,
		Seq:          s.nextSeq(devices),
		CurrentUsage: min(remaining(devices, s.limits), ceiling),
		MaxAllowed:   ceiling,
	}
	devices = append(devices, device)
	fit(devices, device, s.limits)
	if err = s.registry.Save(ctx, device); err != nil {
		err = fmt.Errorf("failed to save device %v: %w", deviceID, err)
		if existing != nil {
			if restoreErr := s.registry.Save(ctx, existing); restoreErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to restore device %v: %w", deviceID, restoreErr))
			}
		}
		return nil, err
	}
	if grant.Redistributed, err = s.rebalance(ctx, devices); err != nil {
		return nil, err
	}
	grant.Applied = device.CurrentUsage
	s.complete(grant, devices)
	return grant, nil
}

// Remove disconnects a device and hands its power to the remaining devices.
// Removing an unknown device is a no-op reported with Grant.Found == false.
func (s *Service) Remove(ctx context.Context, deviceID string) (*Grant, error) {
	devices, err := s.devices(ctx)
	if err != nil {
		return nil, err
	}
	grant := &Grant{DeviceID: deviceID}
	device := devices.Lookup(deviceID)
	if device == nil {
		s.complete(grant, devices)
		return grant, nil
	}
	if err = s.registry.Delete(ctx, deviceID); err != nil {
		return nil, fmt.Errorf("failed to remove device %v: %w", deviceID, err)
	}
	grant.Found = true
	grant.Released = device.CurrentUsage
	devices = without(devices, deviceID)
	if grant.Redistributed, err = s.rebalance(ctx, devices); err != nil {
		return nil, err
	}
	s.complete(grant, devices)
	return grant, nil
}

// Update applies a device consumption request.  A request above the device
// ceiling or beyond the safe capacity is partially granted: the device gets
// as much as the budget allows and Grant.Limited is set.  Updating an unknown
// device is a no-op reported with Grant.Found == false.
func (s *Service) Update(ctx context.Context, deviceID string, requested float64) (*Grant, error) {
	if math.IsNaN(requested) || math.IsInf(requested, 0) || requested < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConsumption, requested)
	}
	devices, err := s.devices(ctx)
	if err != nil {
		return nil, err
	}
	grant := &Grant{DeviceID: deviceID, Requested: requested}
	device := devices.Lookup(deviceID)
	if device == nil {
		s.complete(grant, devices)
		return grant, nil
	}
	grant.Found = true

	target := requested
	if target > device.MaxAllowed {
		target = device.MaxAllowed
		grant.Limited = true
	}
	others := devices.Total() - device.CurrentUsage
	if others+target > s.limits.SafeCapacity {
		target = max(s.limits.SafeCapacity-others, 0)
		grant.Limited = true
	}
	device.CurrentUsage = target
	fit(devices, device, s.limits)
	if err = s.registry.Save(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to save device %v: %w", deviceID, err)
	}
	if grant.Redistributed, err = s.rebalance(ctx, devices); err != nil {
		return nil, err
	}
	grant.Applied = device.CurrentUsage
	s.complete(grant, devices)
	return grant, nil
}

// Snapshot returns detached copies of all devices in FIFO order
func (s *Service) Snapshot(ctx context.Context) (model.Devices, error) {
	devices, err := s.devices(ctx)
	if err != nil {
		return nil, err
	}
	ret := make(model.Devices, 0, len(devices))
	for _, device := range ordered(devices) {
		ret = append(ret, device.Clone())
	}
	return ret, nil
}

// Total returns the total consumption, computed from the device usages
func (s *Service) Total(ctx context.Context) (float64, error) {
	devices, err := s.devices(ctx)
	if err != nil {
		return 0, err
	}
	return devices.Total(), nil
}

// Remaining returns the unused safe capacity
func (s *Service) Remaining(ctx context.Context) (float64, error) {
	devices, err := s.devices(ctx)
	if err != nil {
		return 0, err
	}
	return remaining(devices, s.limits), nil
}

// Device returns a detached copy of a device, nil when the device is unknown
func (s *Service) Device(ctx context.Context, deviceID string) (*model.Device, error) {
	device, err := s.registry.Load(ctx, deviceID)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load device %v: %w", deviceID, err)
	}
	return device.Clone(), nil
}

func (s *Service) rebalance(ctx context.Context, devices model.Devices) (float64, error) {
	changed, granted := redistribute(devices, s.limits)
	for _, device := range changed {
		if err := s.registry.Save(ctx, device); err != nil {
			return granted, fmt.Errorf("failed to save device %v: %w", device.ID, err)
		}
	}
	if granted > 0 {
		meter.UpdateCtx(ctx, meter.Delta{Redistributed: granted})
	}
	return granted, nil
}

func (s *Service) complete(grant *Grant, devices model.Devices) {
	grant.Total = devices.Total()
	grant.Remaining = remaining(devices, s.limits)
}

func (s *Service) devices(ctx context.Context) (model.Devices, error) {
	devices, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (s *Service) policyOf(ctx context.Context) *policy.Policy {
	if p := policy.FromContext(ctx); p != nil {
		return p
	}
	return s.policy
}

func (s *Service) nextSeq(devices model.Devices) uint64 {
	for _, device := range devices {
		s.seq = max(s.seq, device.Seq)
	}
	s.seq++
	return s.seq
}

func without(devices model.Devices, deviceID string) model.Devices {
	ret := make(model.Devices, 0, len(devices))
	for _, device := range devices {
		if device.ID != deviceID {
			ret = append(ret, device)
		}
	}
	return ret
}

// IsDuplicate reports whether err signals a rejected duplicate admission
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}
