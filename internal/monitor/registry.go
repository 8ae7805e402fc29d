package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"checkout-service/internal/domain/slot"
	"checkout-service/internal/pkg/clock"
)

// Registry owns one monitor per open checkout session so that no ticker
// outlives the session it belongs to.
type Registry struct {
	clock    clock.Clock
	interval time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	monitor *Monitor
	cancel  context.CancelFunc
}

func NewRegistry(c clock.Clock, interval time.Duration) *Registry {
	return &Registry{
		clock:    c,
		interval: interval,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Attach replaces any existing monitor for the customer with a fresh
// instance baselined on the given reservation, and starts its ticker.
// Transitions are delivered only while the emitting monitor is still the
// customer's current session: a replaced monitor's in-flight emit races
// re-selection and must not reach the callback.
func (r *Registry) Attach(customerID uuid.UUID, res *slot.Reservation, onTransition TransitionFunc) slot.Classification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[customerID]; ok {
		existing.cancel()
		delete(r.sessions, customerID)
	}

	var m *Monitor
	m = New(r.clock, r.interval, func(ev Event) {
		if !r.resolveEmit(customerID, m, ev.Classification) {
			return
		}
		if onTransition != nil {
			onTransition(ev)
		}
	})
	classification := m.SetReservation(res)

	ctx, cancel := context.WithCancel(context.Background())
	r.sessions[customerID] = &session{monitor: m, cancel: cancel}
	go m.Run(ctx)

	return classification
}

// resolveEmit reports whether m is still the customer's session and, for
// a terminal transition, drops the session. Check and drop happen under
// one lock so a stale emit can neither fire nor evict a successor that
// re-selection just attached.
func (r *Registry) resolveEmit(customerID uuid.UUID, m *Monitor, c slot.Classification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[customerID]
	if !ok || s.monitor != m {
		return false
	}
	if c == slot.ClassificationExpired {
		s.cancel()
		delete(r.sessions, customerID)
	}
	return true
}

// Detach stops and removes the customer's monitor, if any.
func (r *Registry) Detach(customerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[customerID]; ok {
		s.cancel()
		delete(r.sessions, customerID)
	}
}

func (r *Registry) Get(customerID uuid.UUID) (*Monitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[customerID]
	if !ok {
		return nil, false
	}
	return s.monitor, true
}

// Shutdown stops every monitor. Wired to the fx lifecycle OnStop hook.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.cancel()
		delete(r.sessions, id)
	}
}
