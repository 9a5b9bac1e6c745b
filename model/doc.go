// Package model contains the in-memory representation of the power budget:
// device records, capacity limits and the change notifications emitted when
// the allocator mutates its state.
//
// The types are plain data holders shared by the allocator, the event layer
// and the root Service façade, so that every layer refers to the same
// structures with a single import.
package model
