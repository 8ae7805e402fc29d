package builder

import (
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/promo"
)

type PromoBuilder struct {
	code           string
	discountAmount decimal.Decimal
	minOrderAmount decimal.Decimal
}

func NewPromoBuilder() *PromoBuilder {
	return &PromoBuilder{
		code:           "SAVE100",
		discountAmount: decimal.NewFromInt(100),
		minOrderAmount: decimal.NewFromInt(999),
	}
}

func (b *PromoBuilder) With(mutate func(*PromoBuilder)) *PromoBuilder {
	if mutate != nil {
		mutate(b)
	}
	return b
}

func (b *PromoBuilder) WithCode(code string) *PromoBuilder {
	b.code = code
	return b
}

func (b *PromoBuilder) WithDiscount(amount string) *PromoBuilder {
	b.discountAmount = decimal.RequireFromString(amount)
	return b
}

func (b *PromoBuilder) WithMinOrder(amount string) *PromoBuilder {
	b.minOrderAmount = decimal.RequireFromString(amount)
	return b
}

func (b *PromoBuilder) BuildDomain() (*promo.Application, error) {
	return promo.NewApplication(b.code, b.discountAmount, b.minOrderAmount)
}
