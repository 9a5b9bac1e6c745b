package allocator

import (
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/policy"
	"github.com/viant/powerflux/service/dao"
)

// Option configures the allocator
type Option func(*Service)

// WithLimits sets the budget limits
func WithLimits(limits model.Limits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithRegistry sets the device registry implementation
func WithRegistry(registry dao.Service[string, model.Device]) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithPolicy sets the default admission policy, a policy carried by the call context takes precedence
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// DeviceOption configures a single device admission
type DeviceOption func(*admission)

type admission struct {
	ceiling float64
}

// WithDeviceCeiling lowers the device ceiling below the per-device maximum.
// Values that are not positive or exceed the maximum are ignored.
func WithDeviceCeiling(ceiling float64) DeviceOption {
	return func(a *admission) {
		a.ceiling = ceiling
	}
}
