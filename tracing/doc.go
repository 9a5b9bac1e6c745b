// Package tracing integrates OpenTelemetry with the powerflux service so that
// every budget operation can be observed as a span.  All instrumentation is
// kept in a separate package; when no provider is installed spans are no-op.
package tracing
