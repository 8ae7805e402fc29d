package slot

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid delivery date")
	ErrInvalidWindow = errors.New("invalid delivery window")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Window is a pair of local clock times ("HH:MM"). The raw strings are
// kept as stored; parsing happens lazily so a corrupt persisted value
// degrades to fail-open classification instead of dropping the
// customer's selection.
type Window struct {
	start string
	end   string
}

func NewWindow(start, end string) (Window, error) {
	s, err := time.Parse(timeLayout, start)
	if err != nil {
		return Window{}, ErrInvalidWindow
	}
	e, err := time.Parse(timeLayout, end)
	if err != nil {
		return Window{}, ErrInvalidWindow
	}
	if !s.Before(e) {
		return Window{}, ErrInvalidWindow
	}
	return Window{start: start, end: end}, nil
}

// ReconstructWindow rebuilds a window from storage without validation.
func ReconstructWindow(start, end string) Window {
	return Window{start: start, end: end}
}

func (w Window) Start() string { return w.start }
func (w Window) End() string   { return w.end }

// StartOn anchors the window's start time to the given calendar day,
// in that day's location.
func (w Window) StartOn(day time.Time) (time.Time, error) {
	t, err := time.Parse(timeLayout, w.start)
	if err != nil {
		return time.Time{}, ErrInvalidWindow
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func (w Window) Label() string {
	return w.start + " - " + w.end
}

// Countdown is the time remaining until the window opens, exposed only
// for same-day reservations.
type Countdown struct {
	Hours   int
	Minutes int
}
