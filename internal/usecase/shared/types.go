package shared

import (
	"github.com/google/uuid"

	"checkout-service/internal/domain/pricing"
	"checkout-service/internal/domain/promo"
	"checkout-service/internal/domain/slot"
)

// Snapshot is the sanitized state of a checkout session as hydrated from
// the durable scope. Only inputs are persisted; price breakdowns are
// always recomputed.
type Snapshot struct {
	Reservation *slot.Reservation
	Promo       *promo.Application
	WalletOptIn bool
	Form        FormFields
}

// FormFields are the contact/address fields of the checkout form.
type FormFields struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Landmark     string `json:"landmark"`
	PinCode      string `json:"pin_code"`
}

func (f FormFields) IsEmpty() bool {
	return f == FormFields{}
}

// OrderSubmission is the payload handed to the order-acceptance gateway.
type OrderSubmission struct {
	CustomerID  uuid.UUID
	Reservation *slot.Reservation
	Form        FormFields
	Breakdown   pricing.Breakdown
	PromoCode   *string
	ItemCount   int
}

// OrderReceipt is the order service's acknowledgment.
type OrderReceipt struct {
	OrderID string
	Status  string
}
