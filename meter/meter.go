// Package meter provides a lightweight tracker that keeps aggregated
// allocator counters.  The tracker instance can live in the context – every
// component that receives the context can update the counters via the Delta
// helper without requiring a global registry.

package meter

import (
	"context"
	"sync"
	"time"

	"github.com/viant/powerflux/internal/clock"
)

// Delta represents an incremental counter change emitted by the allocator or
// the service façade.
type Delta struct {
	Admitted      int
	Removed       int
	Updated       int
	Limited       int
	Rejected      int
	Redistributed float64
}

// Meter keeps aggregated allocator counters.  It is safe for concurrent use.
type Meter struct {
	Name      string
	StartedAt time.Time

	// Counters – modified via Update().
	Admitted      int
	Removed       int
	Updated       int
	Limited       int
	Rejected      int
	Redistributed float64

	sync.Mutex
	onChange func(Meter)
}

// New creates a meter
func New(name string, onChange func(Meter)) *Meter {
	return &Meter{Name: name, StartedAt: clock.Now(), onChange: onChange}
}

// Update applies the supplied delta to the meter.  If an onChange callback
// has been registered it is invoked with a copy of the meter outside the
// critical section.
func (m *Meter) Update(d Delta) {
	if m == nil {
		return
	}

	m.Lock()

	m.Admitted += d.Admitted
	m.Removed += d.Removed
	m.Updated += d.Updated
	m.Limited += d.Limited
	m.Rejected += d.Rejected
	m.Redistributed += d.Redistributed

	snapshot := m.copyLocked()
	cb := m.onChange

	m.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the meter suitable for read-only inspection.
func (m *Meter) Snapshot() Meter {
	if m == nil {
		return Meter{}
	}
	m.Lock()
	defer m.Unlock()
	return m.copyLocked()
}

func (m *Meter) copyLocked() Meter {
	return Meter{
		Name:          m.Name,
		StartedAt:     m.StartedAt,
		Admitted:      m.Admitted,
		Removed:       m.Removed,
		Updated:       m.Updated,
		Limited:       m.Limited,
		Rejected:      m.Rejected,
		Redistributed: m.Redistributed,
	}
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type meterKeyT struct{}

var meterKey meterKeyT

// WithMeter embeds an existing meter in a derived context.
func WithMeter(ctx context.Context, m *Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, meterKey, m)
}

// WithNewMeter creates a new Meter, embeds it in a derived context and
// returns both.
func WithNewMeter(ctx context.Context, name string, onChange func(Meter)) (context.Context, *Meter) {
	m := New(name, onChange)
	return WithMeter(ctx, m), m
}

// FromContext extracts the Meter from ctx.
func FromContext(ctx context.Context) (*Meter, bool) {
	if ctx == nil {
		return nil, false
	}
	m, ok := ctx.Value(meterKey).(*Meter)
	return m, ok && m != nil
}

// UpdateCtx looks up the meter in ctx (if any) and applies the supplied delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if m, ok := FromContext(ctx); ok {
		m.Update(d)
	}
}
