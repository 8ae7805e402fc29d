package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/promo"
	"checkout-service/internal/domain/slot"
	"checkout-service/internal/usecase/shared"
)

// CheckoutStore is the durable, device-independent scope for in-progress
// selections. Implementations sanitize on load; stale data is dropped,
// never surfaced.
type CheckoutStore interface {
	LoadSnapshot(ctx context.Context, customerID uuid.UUID) (*shared.Snapshot, error)
	SaveSlot(ctx context.Context, customerID uuid.UUID, r *slot.Reservation) error
	DeleteSlot(ctx context.Context, customerID uuid.UUID) error
	SavePromo(ctx context.Context, customerID uuid.UUID, a *promo.Application) error
	DeletePromo(ctx context.Context, customerID uuid.UUID) error
	SaveWalletOptIn(ctx context.Context, customerID uuid.UUID, optedIn bool) error
	SaveForm(ctx context.Context, customerID uuid.UUID, form shared.FormFields) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// PromoValidator is the external code-validation collaborator.
type PromoValidator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*promo.Application, error)
}

// WalletReader reads the customer's store-credit balance.
type WalletReader interface {
	GetBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// OrderGateway submits to the order-acceptance service.
type OrderGateway interface {
	Submit(ctx context.Context, sub shared.OrderSubmission) (*shared.OrderReceipt, error)
}
