package powerflux

import "errors"

// ErrEventsDisabled is returned when change events are requested but disabled in the configuration
var ErrEventsDisabled = errors.New("powerflux: events are disabled")
