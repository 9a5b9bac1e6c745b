// Package policy decides how the allocator treats a device that re-connects
// under an identifier it already tracks.  Without an explicit policy the
// allocator rejects the duplicate.

package policy

import (
	"context"
	"fmt"
	"strings"
)

// Duplicate handling modes recognised by the allocator.
const (
	DuplicateReject  = "reject"  // keep the existing device, fail the admission (default)
	DuplicateReplace = "replace" // release the existing device and admit the new one
)

// Policy represents the admission settings for the allocator.
//
// A nil *Policy means "reject duplicates" and is therefore the zero-cost
// default.
type Policy struct {
	Duplicate string // reject / replace      (default = reject)
}

// Config represents the serialisable form of a Policy.
type Config struct {
	Duplicate string `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Duplicate: p.Duplicate}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{Duplicate: c.Duplicate}
}

// Validate checks that the duplicate mode is recognised.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Duplicate) {
	case "", DuplicateReject, DuplicateReplace:
		return nil
	}
	return fmt.Errorf("unsupported duplicate policy: %q", c.Duplicate)
}

// ReplacesDuplicates reports whether a duplicate admission replaces the
// existing device.  Mode matching is case-insensitive.
func (p *Policy) ReplacesDuplicates() bool {
	if p == nil {
		return false
	}
	return strings.ToLower(p.Duplicate) == DuplicateReplace
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy from ctx, nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
