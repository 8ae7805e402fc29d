// Package monitor keeps a delivery-slot reservation's classification
// fresh while a checkout session is open, without the caller polling.
package monitor

import (
	"context"
	"sync"
	"time"

	"checkout-service/internal/domain/slot"
	"checkout-service/internal/pkg/clock"
)

// Event carries a classification transition. Exactly one event is
// emitted per state change, not one per tick.
type Event struct {
	SlotID         string
	Classification slot.Classification
}

type TransitionFunc func(Event)

// Monitor re-evaluates one reservation against the clock on a fixed
// period. Expired is terminal for a reservation instance; a replacement
// reservation is a new baseline, never a resurrection.
type Monitor struct {
	clock        clock.Clock
	interval     time.Duration
	onTransition TransitionFunc

	mu          sync.Mutex
	reservation *slot.Reservation
	baseline    slot.Classification
	terminal    bool
}

func New(c clock.Clock, interval time.Duration, onTransition TransitionFunc) *Monitor {
	return &Monitor{
		clock:        c,
		interval:     interval,
		onTransition: onTransition,
	}
}

// SetReservation records the classification of a freshly chosen slot as
// the baseline without emitting a transition. Eagerly re-checking right
// after selection would race the selection itself and spuriously evict
// the customer's own choice.
func (m *Monitor) SetReservation(r *slot.Reservation) slot.Classification {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservation = r
	m.baseline = slot.Classify(r, m.clock.Now())
	m.terminal = m.baseline == slot.ClassificationExpired
	return m.baseline
}

func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservation = nil
	m.terminal = false
}

// Run ticks until the context is canceled. There is deliberately no
// immediate evaluation before the first tick; see SetReservation.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	m.mu.Lock()
	if m.reservation == nil || m.terminal {
		m.mu.Unlock()
		return
	}

	current := slot.Classify(m.reservation, m.clock.Now())
	if current == m.baseline {
		m.mu.Unlock()
		return
	}

	m.baseline = current
	if current == slot.ClassificationExpired {
		m.terminal = true
	}
	ev := Event{SlotID: m.reservation.SlotID(), Classification: current}
	emit := m.onTransition
	m.mu.Unlock()

	if emit != nil {
		emit(ev)
	}
}

// Classification returns the current baseline without re-evaluating.
func (m *Monitor) Classification() slot.Classification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseline
}

func (m *Monitor) Reservation() *slot.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservation
}

// Countdown is recomputed against the clock; non-nil only for a
// same-day reservation whose window has not opened.
func (m *Monitor) Countdown() *slot.Countdown {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slot.CountdownTo(m.reservation, m.clock.Now())
}
