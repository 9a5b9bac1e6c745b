package event

import (
	"github.com/viant/powerflux/service/messaging/memory"
)

// Option configures the event service
type Option func(s *Service)

// WithQueueConfig sets the memory queue configuration factory, name identifies the payload type
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}
