// Package powerflux allocates a fixed power budget across connected devices.
//
// Devices are admitted in connection order and receive whatever safe
// capacity is left, up to their per-device ceiling.  Whenever power is
// released (a device disconnects or lowers its consumption) the freed
// capacity is handed out in a single first-come-first-served pass.
//
// The root package exposes the concurrency-safe Service façade:
//
//	srv, _ := powerflux.New()
//	defer srv.Shutdown()
//	allocated, _ := srv.AddDevice(ctx, "A", 0)
//	grant, _ := srv.UpdateDevice(ctx, "A", 20)
//	devices, _ := srv.Snapshot(ctx)
//
// Sub-packages hold the building blocks: service/allocator implements the
// budget rules, service/event publishes change events, meter aggregates
// counters and tracing wires OpenTelemetry spans.
package powerflux
