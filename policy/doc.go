// Package policy provides the declarative admission rules applied by the
// allocator when a device connects with an identifier that is already
// registered.  A policy can be configured once on the allocator or attached
// to a single call via context.
package policy
