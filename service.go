package powerflux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/powerflux/internal/clock"
	"github.com/viant/powerflux/meter"
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/policy"
	"github.com/viant/powerflux/service/allocator"
	"github.com/viant/powerflux/service/dao"
	"github.com/viant/powerflux/service/event"
	"github.com/viant/powerflux/service/messaging"
	"github.com/viant/powerflux/service/messaging/memory"
	"github.com/viant/powerflux/tracing"
)

const eventSource = "powerflux"

// Service is the concurrency-safe façade over the power allocator.  Every
// operation runs under a single-writer lock, is traced, metered and, when
// events are enabled, announced as a model.Change event.
type Service struct {
	config        *Config
	limits        *model.Limits
	policy        *policy.Policy
	registry      dao.Service[string, model.Device]
	allocator     *allocator.Service
	eventService  *event.Service
	publisher     *event.Publisher[model.Change]
	meter         *meter.Meter
	meterListener func(meter.Meter)
	initErrors    []error
	mux           sync.Mutex
}

// New creates a service
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if err := errors.Join(s.initErrors...); err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if tracingConfig := s.config.Tracing; tracingConfig.Enabled {
		if err := tracing.Init(tracingConfig.ServiceName, tracingConfig.ServiceVersion, tracingConfig.OutputFile); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	limits := s.config.Limits
	if s.limits != nil {
		limits = *s.limits
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(&s.config.Policy)
	}
	options := []allocator.Option{allocator.WithLimits(limits), allocator.WithPolicy(s.policy)}
	if s.registry != nil {
		options = append(options, allocator.WithRegistry(s.registry))
	}
	var err error
	if s.allocator, err = allocator.New(options...); err != nil {
		return err
	}
	s.meter = meter.New(eventSource, s.meterListener)
	if s.config.Events.Enabled {
		if s.eventService == nil {
			buffer := s.config.Events.Buffer
			s.eventService = event.New(event.WithQueueConfig(func(string) memory.Config {
				config := memory.DefaultConfig()
				config.QueueBuffer = buffer
				config.DropWhenFull = true
				return config
			}))
		}
		s.publisher = event.PublisherOf[model.Change](s.eventService)
	}
	return nil
}

// AddDevice admits a device and returns the power allocated to it
func (s *Service) AddDevice(ctx context.Context, deviceID string, timestamp int64, options ...allocator.DeviceOption) (float64, error) {
	grant, err := s.run(ctx, "add", deviceID, func(ctx context.Context) (*allocator.Grant, error) {
		return s.allocator.Add(ctx, deviceID, timestamp, options...)
	})
	if err != nil {
		return 0, err
	}
	return grant.Applied, nil
}

// RemoveDevice disconnects a device; it reports false when the device was unknown
func (s *Service) RemoveDevice(ctx context.Context, deviceID string) (bool, error) {
	grant, err := s.run(ctx, "remove", deviceID, func(ctx context.Context) (*allocator.Grant, error) {
		return s.allocator.Remove(ctx, deviceID)
	})
	if err != nil {
		return false, err
	}
	return grant.Found, nil
}

// UpdateDevice applies a consumption request; Grant.Applied is the usage granted to the device
func (s *Service) UpdateDevice(ctx context.Context, deviceID string, requested float64) (*allocator.Grant, error) {
	return s.run(ctx, "update", deviceID, func(ctx context.Context) (*allocator.Grant, error) {
		return s.allocator.Update(ctx, deviceID, requested)
	})
}

// Snapshot returns a read-only view of the devices ordered by connection time
func (s *Service) Snapshot(ctx context.Context) (model.Devices, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocator.Snapshot(ctx)
}

// Total returns the current total consumption
func (s *Service) Total(ctx context.Context) (float64, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocator.Total(ctx)
}

// Remaining returns the unused safe capacity
func (s *Service) Remaining(ctx context.Context) (float64, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocator.Remaining(ctx)
}

// Device returns a copy of a single device, nil when the device is unknown
func (s *Service) Device(ctx context.Context, deviceID string) (*model.Device, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocator.Device(ctx, deviceID)
}

// Config returns the effective configuration, including limits and policy overrides
func (s *Service) Config() Config {
	ret := *s.config
	ret.Limits = s.allocator.Limits()
	if cfg := policy.ToConfig(s.policy); cfg != nil {
		ret.Policy = *cfg
	}
	return ret
}

// Limits returns the enforced budget limits
func (s *Service) Limits() model.Limits {
	return s.allocator.Limits()
}

// Meter returns a snapshot of the aggregated counters
func (s *Service) Meter() meter.Meter {
	return s.meter.Snapshot()
}

// Events returns the event service, nil when events are disabled
func (s *Service) Events() *event.Service {
	return s.eventService
}

// OnChange registers a handler receiving every change event, replacing any
// previous one.  An event whose handler returns an error is redelivered until
// the queue retries are exhausted, then dead-lettered.
func (s *Service) OnChange(handler event.Handler[model.Change]) error {
	if s.eventService == nil {
		return ErrEventsDisabled
	}
	event.SetListenerOf[model.Change](s.eventService, handler)
	return nil
}

// DeadLetters returns the number of change events no handler could process
func (s *Service) DeadLetters() int {
	if s.publisher == nil {
		return 0
	}
	return s.publisher.DeadLetters()
}

// Shutdown stops event listeners
func (s *Service) Shutdown() {
	if s.eventService != nil {
		s.eventService.Close()
	}
}

func (s *Service) run(ctx context.Context, operation, deviceID string, fn func(ctx context.Context) (*allocator.Grant, error)) (*allocator.Grant, error) {
	ctx, span := tracing.StartSpan(ctx, eventSource+"."+operation)
	span.SetDevice(deviceID)
	started := clock.Now()

	s.mux.Lock()
	defer s.mux.Unlock()

	grant, err := fn(meter.WithMeter(ctx, s.meter))
	if err != nil {
		if allocator.IsDuplicate(err) {
			s.meter.Update(meter.Delta{Rejected: 1})
			s.publish(ctx, operation, started, &model.Change{Kind: model.ChangeRejected, DeviceID: deviceID})
		}
		tracing.EndSpan(span, err)
		return nil, err
	}
	span.SetFlag("device.found", grant.Found).
		SetPower("applied", grant.Applied).
		SetPower("redistributed", grant.Redistributed).
		SetPower("total", grant.Total)
	if grant.Found {
		change, delta := describe(operation, grant)
		s.meter.Update(delta)
		s.publish(ctx, operation, started, change)
	}
	tracing.EndSpan(span, nil)
	return grant, nil
}

func describe(operation string, grant *allocator.Grant) (*model.Change, meter.Delta) {
	change := &model.Change{
		DeviceID:      grant.DeviceID,
		Requested:     grant.Requested,
		Applied:       grant.Applied,
		Released:      grant.Released,
		Redistributed: grant.Redistributed,
		Total:         grant.Total,
		Remaining:     grant.Remaining,
	}
	var delta meter.Delta
	switch operation {
	case "add":
		change.Kind = model.ChangeAdded
		if grant.Replaced {
			change.Kind = model.ChangeReplaced
		}
		delta.Admitted = 1
	case "remove":
		change.Kind = model.ChangeRemoved
		change.Applied = 0
		delta.Removed = 1
	default:
		change.Kind = model.ChangeUpdated
		delta.Updated = 1
		if grant.Limited {
			change.Kind = model.ChangeLimited
			delta.Limited = 1
		}
	}
	return change, delta
}

func (s *Service) publish(ctx context.Context, operation string, started time.Time, change *model.Change) {
	if s.publisher == nil {
		return
	}
	eCtx := &event.Context{
		Source:      eventSource,
		Operation:   operation,
		DeviceID:    change.DeviceID,
		TimeTakenMs: int(clock.Since(started).Milliseconds()),
	}
	err := s.publisher.Publish(context.WithoutCancel(ctx), event.NewEvent(eCtx, *change))
	if err != nil && !errors.Is(err, messaging.ErrQueueFull) {
		log.Printf("failed to publish %v change event for %v: %v", operation, change.DeviceID, err)
	}
}
