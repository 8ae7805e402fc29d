package slot

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidReservation = errors.New("invalid slot reservation")

// Reservation is a customer-chosen delivery date and time window. It is
// replaced wholesale on re-selection, never partially edited.
type Reservation struct {
	slotID  string
	date    string // YYYY-MM-DD, a plain calendar date
	window  Window
	pinCode string
}

// NewReservation validates a freshly chosen slot. The creation path is
// strict: a reservation must denote a real date and window when picked.
func NewReservation(slotID, date string, window Window, pinCode string) (*Reservation, error) {
	if strings.TrimSpace(slotID) == "" {
		return nil, ErrInvalidReservation
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return &Reservation{
		slotID:  slotID,
		date:    date,
		window:  window,
		pinCode: pinCode,
	}, nil
}

// ReconstructReservation rebuilds a reservation from the durable scope
// without validation; classification decides whether it is still usable.
func ReconstructReservation(slotID, date string, window Window, pinCode string) *Reservation {
	return &Reservation{
		slotID:  slotID,
		date:    date,
		window:  window,
		pinCode: pinCode,
	}
}

func (r *Reservation) SlotID() string  { return r.slotID }
func (r *Reservation) Date() string    { return r.date }
func (r *Reservation) Window() Window  { return r.window }
func (r *Reservation) PinCode() string { return r.pinCode }

// DateIn parses the calendar date in the given location. The date is a
// plain year/month/day; anchoring it in the observer's location avoids a
// UTC fold shifting the day.
func (r *Reservation) DateIn(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, r.date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
