//go:build unit

package monitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-service/internal/domain/slot"
	"checkout-service/internal/pkg/clock"
	"checkout-service/tests/common/builder"
)

func TestRegistry(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 8, 0, 0, 0, ist))
	reservation := builder.NewReservationBuilder().
		WithDate("2026-03-10").
		WithWindow("12:00", "14:00").
		Reconstruct()

	t.Run("attach baselines and registers the session", func(t *testing.T) {
		r := NewRegistry(clk, time.Hour)
		customerID := uuid.New()

		got := r.Attach(customerID, reservation, nil)
		require.Equal(t, slot.ClassificationValid, got)

		m, ok := r.Get(customerID)
		require.True(t, ok)
		assert.Equal(t, "SLOT-MORNING-01", m.Reservation().SlotID())
	})

	t.Run("attach replaces an existing session", func(t *testing.T) {
		r := NewRegistry(clk, time.Hour)
		customerID := uuid.New()

		r.Attach(customerID, reservation, nil)
		first, _ := r.Get(customerID)

		r.Attach(customerID, reservation, nil)
		second, ok := r.Get(customerID)
		require.True(t, ok)
		assert.NotSame(t, first, second)
	})

	t.Run("detach removes the session", func(t *testing.T) {
		r := NewRegistry(clk, time.Hour)
		customerID := uuid.New()

		r.Attach(customerID, reservation, nil)
		r.Detach(customerID)

		_, ok := r.Get(customerID)
		assert.False(t, ok)

		// detaching twice is harmless
		r.Detach(customerID)
	})

	t.Run("late emit from a replaced session is dropped", func(t *testing.T) {
		localClk := clock.NewMockClock(time.Date(2026, 3, 10, 8, 0, 0, 0, ist))
		r := NewRegistry(localClk, time.Hour)
		defer r.Shutdown()
		customerID := uuid.New()

		today := builder.NewReservationBuilder().
			WithDate("2026-03-10").
			WithWindow("12:00", "14:00").
			Reconstruct()

		var firstEvents, secondEvents []Event
		r.Attach(customerID, today, func(ev Event) { firstEvents = append(firstEvents, ev) })
		stale, ok := r.Get(customerID)
		require.True(t, ok)

		r.Attach(customerID, today, func(ev Event) { secondEvents = append(secondEvents, ev) })
		current, ok := r.Get(customerID)
		require.True(t, ok)
		require.NotSame(t, stale, current)

		localClk.Set(time.Date(2026, 3, 10, 13, 0, 0, 0, ist))

		// the replaced monitor's expiry must neither fire nor evict the
		// session that re-selection attached
		stale.tick()
		assert.Empty(t, firstEvents)
		got, ok := r.Get(customerID)
		require.True(t, ok)
		assert.Same(t, current, got)

		// the current monitor's expiry fires once and closes the session
		current.tick()
		require.Len(t, secondEvents, 1)
		assert.Equal(t, slot.ClassificationExpired, secondEvents[0].Classification)
		_, ok = r.Get(customerID)
		assert.False(t, ok)
	})

	t.Run("shutdown clears every session", func(t *testing.T) {
		r := NewRegistry(clk, time.Hour)
		first := uuid.New()
		second := uuid.New()

		r.Attach(first, reservation, nil)
		r.Attach(second, reservation, nil)
		r.Shutdown()

		_, ok := r.Get(first)
		assert.False(t, ok)
		_, ok = r.Get(second)
		assert.False(t, ok)
	})
}
