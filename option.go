package powerflux

import (
	"github.com/viant/powerflux/meter"
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/policy"
	"github.com/viant/powerflux/service/dao"
	"github.com/viant/powerflux/service/event"
	"github.com/viant/powerflux/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig sets the service configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLimits overrides the configured budget limits
func WithLimits(limits model.Limits) Option {
	return func(s *Service) {
		s.limits = &limits
	}
}

// WithPolicy overrides the configured duplicate admission policy
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithRegistry sets the device registry
func WithRegistry(registry dao.Service[string, model.Device]) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithEventService sets the event service used to publish change events
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMeterListener registers a callback invoked after every meter update
func WithMeterListener(fn func(meter.Meter)) Option {
	return func(s *Service) {
		s.meterListener = fn
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.initErrors = append(s.initErrors, tracing.Init(serviceName, serviceVersion, outputFile))
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.initErrors = append(s.initErrors, tracing.InitWithExporter(serviceName, serviceVersion, exporter))
	}
}
