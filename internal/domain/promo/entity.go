package promo

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCode           = errors.New("promo code is empty")
	ErrNonPositiveDiscount = errors.New("promo discount must be positive")
	ErrNegativeMinOrder    = errors.New("promo min order amount cannot be negative")
)

// Application is a promo that an external validation collaborator has
// already accepted. There is no "applied promo with zero discount": a
// value failing the invariant is absent, not an error state the rest of
// the checkout has to carry.
type Application struct {
	code           string
	discountAmount decimal.Decimal
	minOrderAmount decimal.Decimal
}

func NewApplication(code string, discountAmount, minOrderAmount decimal.Decimal) (*Application, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, ErrEmptyCode
	}
	if !discountAmount.IsPositive() {
		return nil, ErrNonPositiveDiscount
	}
	if minOrderAmount.IsNegative() {
		return nil, ErrNegativeMinOrder
	}
	return &Application{
		code:           code,
		discountAmount: discountAmount,
		minOrderAmount: minOrderAmount,
	}, nil
}

func (a *Application) Code() string                    { return a.code }
func (a *Application) DiscountAmount() decimal.Decimal { return a.discountAmount }
func (a *Application) MinOrderAmount() decimal.Decimal { return a.minOrderAmount }

// SatisfiedBy reports whether the cart total still meets the threshold
// the promo was granted against. A promo that stops qualifying is
// discarded, never surfaced as an error.
func (a *Application) SatisfiedBy(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(a.minOrderAmount)
}
