package slot

import (
	"time"

	"checkout-service/internal/pkg/clock"
)

// ExpiringSoonWindow is how close to the window start a same-day slot is
// reported as expiring.
const ExpiringSoonWindow = 120 * time.Minute

// expiredGraceDays absorbs cross-midnight edge cases: a checkout that
// briefly runs past midnight must not evict the customer's slot.
const expiredGraceDays = 1

// Classify is a pure function of the reservation and the current instant.
// Parse failures classify Valid: only genuine expiry may block checkout.
func Classify(r *Reservation, now time.Time) Classification {
	if r == nil {
		return ClassificationValid
	}

	day, err := r.DateIn(now.Location())
	if err != nil {
		return ClassificationValid
	}

	daysUntil := daysBetween(clock.Midnight(now), day)
	if daysUntil < -expiredGraceDays {
		return ClassificationExpired
	}
	if daysUntil != 0 {
		// A slot dated tomorrow or later is never ExpiringSoon.
		return ClassificationValid
	}

	start, err := r.Window().StartOn(day)
	if err != nil {
		return ClassificationValid
	}
	if !now.Before(start) {
		// The window has begun; the operational promise cannot be kept.
		return ClassificationExpired
	}
	if start.Sub(now) < ExpiringSoonWindow {
		return ClassificationExpiringSoon
	}
	return ClassificationValid
}

// CountdownTo returns the remaining time until the window opens, or nil
// for anything other than a same-day reservation that has not started.
func CountdownTo(r *Reservation, now time.Time) *Countdown {
	if r == nil {
		return nil
	}
	day, err := r.DateIn(now.Location())
	if err != nil {
		return nil
	}
	if daysBetween(clock.Midnight(now), day) != 0 {
		return nil
	}
	start, err := r.Window().StartOn(day)
	if err != nil {
		return nil
	}
	until := start.Sub(now)
	if until <= 0 {
		return nil
	}
	return &Countdown{
		Hours:   int(until / time.Hour),
		Minutes: int((until % time.Hour) / time.Minute),
	}
}

// daysBetween counts whole calendar days from a (midnight) to b
// (midnight), both in the same location. Rounding absorbs the one-hour
// drift of DST transitions.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(24*time.Hour) / (24 * time.Hour))
}
