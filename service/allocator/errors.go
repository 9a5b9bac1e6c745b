package allocator

import "errors"

var (
	// ErrDuplicateID is returned when a device connects under an identifier
	// that is already registered and the duplicate policy rejects it.
	ErrDuplicateID = errors.New("allocator: duplicate device id")

	// ErrInvalidID is returned for an empty device identifier.
	ErrInvalidID = errors.New("allocator: invalid device id")

	// ErrInvalidConsumption is returned when a requested consumption is
	// negative or not a finite number.
	ErrInvalidConsumption = errors.New("allocator: invalid consumption")
)
