package pricing

import "github.com/shopspring/decimal"

// walletCapRate caps wallet redemption at 10% of the pre-wallet total.
var walletCapRate = decimal.RequireFromString("0.10")

// Round2 rounds to 2 decimal places, half-up at the cent. The order
// service recomputes the same amounts independently; this single
// rounding rule is the numeric contract between the two sides.
// (decimal.Round is half away from zero, which equals half-up for the
// non-negative amounts handled here.)
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Compose derives the payable breakdown. Pure and deterministic: the
// step order and the rounding points are fixed because the order service
// must arrive at byte-identical WalletDiscount and Total values.
func Compose(in Inputs) Breakdown {
	deliveryCharge := in.BaseDeliveryCharge
	if in.Subtotal.GreaterThanOrEqual(in.FreeDeliveryThreshold) {
		deliveryCharge = decimal.Zero
	}

	promoDiscount := decimal.Zero
	if in.Promo != nil {
		promoDiscount = in.Promo.DiscountAmount()
	}

	preWalletTotal := in.Subtotal.Sub(promoDiscount).Add(deliveryCharge)
	if preWalletTotal.IsNegative() {
		preWalletTotal = decimal.Zero
	}

	// Cap is rounded after the multiplication, never before.
	walletCap := Round2(preWalletTotal.Mul(walletCapRate))

	walletDiscount := decimal.Zero
	if in.Wallet.OptedIn {
		walletDiscount = Round2(decimal.Min(in.Wallet.Balance, walletCap))
	}

	total := preWalletTotal.Sub(walletDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal:       in.Subtotal,
		PromoDiscount:  promoDiscount,
		DeliveryCharge: deliveryCharge,
		WalletDiscount: walletDiscount,
		Total:          total,
	}
}
