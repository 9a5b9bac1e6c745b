// Package idgen wraps the UUID generator used for queue message and event
// identifiers so that it can be stubbed in tests.  Callers treat the returned
// identifiers as opaque strings.
package idgen
