// Package meter defines primitives for aggregating allocator activity
// (admissions, removals, updates, redistributed power) so that callers can
// observe the power budget without inspecting every change event.
package meter
