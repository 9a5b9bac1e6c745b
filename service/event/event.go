package event

import (
	"time"

	"github.com/viant/powerflux/internal/clock"
)

// Context describes where an event originated
type Context struct {
	Source      string `json:"source"`
	Operation   string `json:"operation"`
	DeviceID    string `json:"deviceId,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

// Event wraps a payload with its origin and creation time
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
