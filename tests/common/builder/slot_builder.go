package builder

import (
	"checkout-service/internal/domain/slot"
)

type ReservationBuilder struct {
	slotID    string
	date      string
	startTime string
	endTime   string
	pinCode   string
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		slotID:    "SLOT-MORNING-01",
		date:      "2026-09-01",
		startTime: "10:00",
		endTime:   "12:00",
		pinCode:   "560001",
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	if mutate != nil {
		mutate(b)
	}
	return b
}

func (b *ReservationBuilder) WithSlotID(id string) *ReservationBuilder {
	b.slotID = id
	return b
}

func (b *ReservationBuilder) WithDate(date string) *ReservationBuilder {
	b.date = date
	return b
}

func (b *ReservationBuilder) WithWindow(start, end string) *ReservationBuilder {
	b.startTime = start
	b.endTime = end
	return b
}

func (b *ReservationBuilder) WithPinCode(pin string) *ReservationBuilder {
	b.pinCode = pin
	return b
}

// BuildDomain goes through the strict creation path.
func (b *ReservationBuilder) BuildDomain() (*slot.Reservation, error) {
	window, err := slot.NewWindow(b.startTime, b.endTime)
	if err != nil {
		return nil, err
	}
	return slot.NewReservation(b.slotID, b.date, window, b.pinCode)
}

// Reconstruct bypasses validation, like a load from the durable scope.
func (b *ReservationBuilder) Reconstruct() *slot.Reservation {
	return slot.ReconstructReservation(
		b.slotID,
		b.date,
		slot.ReconstructWindow(b.startTime, b.endTime),
		b.pinCode,
	)
}
