// Package allocator owns the device set and is the only service allowed to
// mutate device allocations.  It admits, updates and removes devices against
// a shared power budget and, after every mutation, hands any unused capacity
// to the earliest connected devices in a single FIFO pass.
//
// The allocator is not safe for concurrent use; callers serialise access (the
// root powerflux.Service does so with a single-writer lock).
package allocator
