package pricing

import (
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/promo"
)

// WalletState is owned by the external wallet service; this subsystem
// only reads the balance and the customer's opt-in flag.
type WalletState struct {
	Balance decimal.Decimal
	OptedIn bool
}

// Inputs are everything Compose needs. Delivery settings come from
// configuration and are immutable for the duration of a session.
type Inputs struct {
	Subtotal              decimal.Decimal
	Promo                 *promo.Application
	FreeDeliveryThreshold decimal.Decimal
	BaseDeliveryCharge    decimal.Decimal
	Wallet                WalletState
}

// Breakdown is derived, recomputed on every input change and never
// persisted as authoritative.
type Breakdown struct {
	Subtotal       decimal.Decimal
	PromoDiscount  decimal.Decimal
	DeliveryCharge decimal.Decimal
	WalletDiscount decimal.Decimal
	Total          decimal.Decimal
}

// PreWalletTotal re-derives the clamped total before wallet redemption.
func (b Breakdown) PreWalletTotal() decimal.Decimal {
	pre := b.Subtotal.Sub(b.PromoDiscount).Add(b.DeliveryCharge)
	if pre.IsNegative() {
		return decimal.Zero
	}
	return pre
}

// WithWalletDiscount returns a copy with the wallet discount replaced
// and the total re-derived. Used by the reconciliation retry when the
// order service reports a lower authority-computed ceiling.
func (b Breakdown) WithWalletDiscount(walletDiscount decimal.Decimal) Breakdown {
	next := b
	next.WalletDiscount = Round2(walletDiscount)
	total := next.PreWalletTotal().Sub(next.WalletDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	next.Total = total
	return next
}
