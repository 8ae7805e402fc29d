//go:build unit

package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-service/internal/domain/promo"
	"checkout-service/internal/domain/slot"
	"checkout-service/internal/infra"
	"checkout-service/internal/monitor"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/pkg/config"
	"checkout-service/internal/pkg/errs"
	"checkout-service/internal/usecase"
	"checkout-service/internal/usecase/shared"
	"checkout-service/tests/common/builder"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStore struct {
	snapshot *shared.Snapshot
	loadErr  error

	savedSlots    []*slot.Reservation
	savedPromos   []*promo.Application
	savedOptIns   []bool
	savedForms    []shared.FormFields
	deletedSlots  int
	deletedPromos int
	cleared       int
}

func (f *fakeStore) LoadSnapshot(_ context.Context, _ uuid.UUID) (*shared.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.snapshot == nil {
		return &shared.Snapshot{}, nil
	}
	return f.snapshot, nil
}

func (f *fakeStore) SaveSlot(_ context.Context, _ uuid.UUID, r *slot.Reservation) error {
	f.savedSlots = append(f.savedSlots, r)
	return nil
}

func (f *fakeStore) DeleteSlot(_ context.Context, _ uuid.UUID) error {
	f.deletedSlots++
	return nil
}

func (f *fakeStore) SavePromo(_ context.Context, _ uuid.UUID, a *promo.Application) error {
	f.savedPromos = append(f.savedPromos, a)
	return nil
}

func (f *fakeStore) DeletePromo(_ context.Context, _ uuid.UUID) error {
	f.deletedPromos++
	return nil
}

func (f *fakeStore) SaveWalletOptIn(_ context.Context, _ uuid.UUID, optedIn bool) error {
	f.savedOptIns = append(f.savedOptIns, optedIn)
	return nil
}

func (f *fakeStore) SaveForm(_ context.Context, _ uuid.UUID, form shared.FormFields) error {
	f.savedForms = append(f.savedForms, form)
	return nil
}

func (f *fakeStore) Clear(_ context.Context, _ uuid.UUID) error {
	f.cleared++
	return nil
}

type fakePromoValidator struct {
	application *promo.Application
	err         error
}

func (f *fakePromoValidator) Validate(_ context.Context, _ string, _ decimal.Decimal) (*promo.Application, error) {
	return f.application, f.err
}

type fakeWalletReader struct {
	balance decimal.Decimal
	err     error
	calls   int
}

func (f *fakeWalletReader) GetBalance(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	f.calls++
	return f.balance, f.err
}

type submitResponse struct {
	receipt *shared.OrderReceipt
	err     error
}

type fakeOrderGateway struct {
	responses   []submitResponse
	submissions []shared.OrderSubmission

	// when non-nil, Submit signals entered and blocks until released
	entered  chan struct{}
	released chan struct{}
}

func (f *fakeOrderGateway) Submit(_ context.Context, sub shared.OrderSubmission) (*shared.OrderReceipt, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.released
	}
	f.submissions = append(f.submissions, sub)
	if len(f.responses) == 0 {
		return &shared.OrderReceipt{OrderID: "ORD-1", Status: "accepted"}, nil
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.receipt, next.err
}

type fixture struct {
	uc       usecase.CheckoutCommands
	store    *fakeStore
	promos   *fakePromoValidator
	wallet   *fakeWalletReader
	gateway  *fakeOrderGateway
	monitors *monitor.Registry
	clock    *clock.MockClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, ist))
	store := &fakeStore{}
	promos := &fakePromoValidator{}
	wallet := &fakeWalletReader{balance: decimal.Zero}
	gateway := &fakeOrderGateway{}
	monitors := monitor.NewRegistry(clk, time.Hour)
	t.Cleanup(monitors.Shutdown)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc, err := usecase.NewCheckoutUseCase(
		store, promos, wallet, gateway, monitors, clk,
		config.NewTestConfig().Checkout, logger,
	)
	require.NoError(t, err)

	return &fixture{
		uc:       uc,
		store:    store,
		promos:   promos,
		wallet:   wallet,
		gateway:  gateway,
		monitors: monitors,
		clock:    clk,
	}
}

func validForm() shared.FormFields {
	return shared.FormFields{
		Name:         "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		PinCode:      "560001",
	}
}

func futureReservation() *slot.Reservation {
	return builder.NewReservationBuilder().
		WithDate("2026-03-12").
		WithWindow("10:00", "12:00").
		Reconstruct()
}

func TestSelectSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and starts monitoring a valid slot", func(t *testing.T) {
		f := newFixture(t)
		customerID := uuid.New()

		status, err := f.uc.SelectSlot(ctx, customerID, usecase.SelectSlotParams{
			SlotID:    "SLOT-MORNING-01",
			Date:      "2026-03-12",
			StartTime: "10:00",
			EndTime:   "12:00",
			PinCode:   "560001",
		})
		require.NoError(t, err)

		assert.Equal(t, slot.ClassificationValid, status.Classification)
		require.Len(t, f.store.savedSlots, 1)

		_, attached := f.monitors.Get(customerID)
		assert.True(t, attached)
	})

	t.Run("rejects an already expired slot", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.SelectSlot(ctx, uuid.New(), usecase.SelectSlotParams{
			SlotID:    "SLOT-OLD",
			Date:      "2026-03-07",
			StartTime: "10:00",
			EndTime:   "12:00",
			PinCode:   "560001",
		})
		require.ErrorIs(t, err, errs.ErrSlotExpired)
		assert.Empty(t, f.store.savedSlots)
	})

	t.Run("rejects malformed slot input", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.SelectSlot(ctx, uuid.New(), usecase.SelectSlotParams{
			SlotID:    "SLOT-BAD",
			Date:      "2026-03-12",
			StartTime: "12:00",
			EndTime:   "10:00",
			PinCode:   "560001",
		})
		require.ErrorIs(t, err, errs.ErrInvalidSlot)
	})
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("restarts monitoring for a surviving reservation", func(t *testing.T) {
		f := newFixture(t)
		customerID := uuid.New()
		f.store.snapshot = &shared.Snapshot{Reservation: futureReservation()}

		state, err := f.uc.Hydrate(ctx, customerID)
		require.NoError(t, err)

		require.NotNil(t, state.SlotStatus)
		assert.Equal(t, slot.ClassificationValid, state.SlotStatus.Classification)
		_, attached := f.monitors.Get(customerID)
		assert.True(t, attached)
	})

	t.Run("empty scope yields no slot status", func(t *testing.T) {
		f := newFixture(t)

		state, err := f.uc.Hydrate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, state.SlotStatus)
	})
}

func TestApplyPromo(t *testing.T) {
	ctx := context.Background()

	t.Run("saves a validated promo", func(t *testing.T) {
		f := newFixture(t)
		application, err := builder.NewPromoBuilder().BuildDomain()
		require.NoError(t, err)
		f.promos.application = application

		got, err := f.uc.ApplyPromo(ctx, uuid.New(), "SAVE100", dec("1600"))
		require.NoError(t, err)
		assert.Equal(t, "SAVE100", got.Code())
		assert.Len(t, f.store.savedPromos, 1)
	})

	t.Run("collaborator rejection surfaces as a promo rejection", func(t *testing.T) {
		f := newFixture(t)
		f.promos.err = infra.WrapInfraErr("promo declined", nil, infra.KindRemoteRejected)

		_, err := f.uc.ApplyPromo(ctx, uuid.New(), "NOPE", dec("1600"))
		require.ErrorIs(t, err, errs.ErrPromoRejected)
		assert.Empty(t, f.store.savedPromos)
	})

	t.Run("collaborator outage is a remote failure", func(t *testing.T) {
		f := newFixture(t)
		f.promos.err = infra.WrapInfraErr("promo service down", nil, infra.KindRemoteFailure)

		_, err := f.uc.ApplyPromo(ctx, uuid.New(), "SAVE100", dec("1600"))
		require.ErrorIs(t, err, errs.ErrRemoteCallFailed)
	})

	t.Run("blank code never reaches the collaborator", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ApplyPromo(ctx, uuid.New(), "   ", dec("1600"))
		require.ErrorIs(t, err, errs.ErrPromoRejected)
	})
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("composes from the persisted scope", func(t *testing.T) {
		f := newFixture(t)
		application, err := builder.NewPromoBuilder().BuildDomain()
		require.NoError(t, err)
		f.store.snapshot = &shared.Snapshot{
			Reservation: futureReservation(),
			Promo:       application,
			WalletOptIn: true,
		}
		f.wallet.balance = dec("500")

		quote, err := f.uc.Quote(ctx, uuid.New(), dec("1600"))
		require.NoError(t, err)

		assert.True(t, quote.Breakdown.DeliveryCharge.IsZero())
		assert.True(t, quote.Breakdown.WalletDiscount.Equal(dec("150.00")))
		assert.True(t, quote.Breakdown.Total.Equal(dec("1350.00")))
		require.NotNil(t, quote.SlotStatus)
		assert.Equal(t, slot.ClassificationValid, quote.SlotStatus.Classification)
	})

	t.Run("drops a promo below its minimum order", func(t *testing.T) {
		f := newFixture(t)
		application, err := builder.NewPromoBuilder().WithMinOrder("999").BuildDomain()
		require.NoError(t, err)
		f.store.snapshot = &shared.Snapshot{Promo: application}

		quote, err := f.uc.Quote(ctx, uuid.New(), dec("500"))
		require.NoError(t, err)

		assert.Nil(t, quote.Promo)
		assert.True(t, quote.Breakdown.PromoDiscount.IsZero())
		assert.Equal(t, 1, f.store.deletedPromos)
	})

	t.Run("missing wallet surfaces as not found", func(t *testing.T) {
		f := newFixture(t)
		f.store.snapshot = &shared.Snapshot{WalletOptIn: true}
		f.wallet.err = infra.WrapInfraErr("wallet not found", nil, infra.KindNotFound)

		_, err := f.uc.Quote(ctx, uuid.New(), dec("1200"))
		require.ErrorIs(t, err, errs.ErrWalletNotFound)
	})

	t.Run("skips the wallet read when opted out", func(t *testing.T) {
		f := newFixture(t)
		f.store.snapshot = &shared.Snapshot{WalletOptIn: false}

		_, err := f.uc.Quote(ctx, uuid.New(), dec("1200"))
		require.NoError(t, err)
		assert.Zero(t, f.wallet.calls)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("submits and closes the session", func(t *testing.T) {
		f := newFixture(t)
		customerID := uuid.New()
		f.store.snapshot = &shared.Snapshot{
			Reservation: futureReservation(),
			WalletOptIn: true,
		}
		f.wallet.balance = dec("500")
		f.monitors.Attach(customerID, f.store.snapshot.Reservation, nil)

		result, err := f.uc.Submit(ctx, customerID, usecase.SubmitParams{
			Subtotal:  dec("1600"),
			ItemCount: 3,
			Form:      validForm(),
		})
		require.NoError(t, err)

		assert.Equal(t, "ORD-1", result.Receipt.OrderID)
		assert.False(t, result.Reconciled)
		assert.Empty(t, result.Warning)
		assert.True(t, result.Breakdown.WalletDiscount.Equal(dec("160.00")))
		assert.True(t, result.Breakdown.Total.Equal(dec("1440.00")))

		assert.Equal(t, 1, f.store.cleared)
		_, attached := f.monitors.Get(customerID)
		assert.False(t, attached)
	})

	t.Run("reconciles once against the authority wallet ceiling", func(t *testing.T) {
		f := newFixture(t)
		application, err := builder.NewPromoBuilder().BuildDomain()
		require.NoError(t, err)
		f.store.snapshot = &shared.Snapshot{
			Reservation: futureReservation(),
			Promo:       application,
			WalletOptIn: true,
		}
		f.wallet.balance = dec("500")
		f.gateway.responses = []submitResponse{
			{err: &infra.WalletLimitError{AuthorityMax: dec("120")}},
			{receipt: &shared.OrderReceipt{OrderID: "ORD-2", Status: "accepted"}},
		}

		result, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1600"),
			ItemCount: 2,
			Form:      validForm(),
		})
		require.NoError(t, err)

		assert.True(t, result.Reconciled)
		assert.True(t, result.Breakdown.WalletDiscount.Equal(dec("120.00")))
		assert.True(t, result.Breakdown.Total.Equal(dec("1380.00")))

		require.Len(t, f.gateway.submissions, 2)
		assert.True(t, f.gateway.submissions[0].Breakdown.WalletDiscount.Equal(dec("150.00")))
		assert.True(t, f.gateway.submissions[1].Breakdown.WalletDiscount.Equal(dec("120.00")))
	})

	t.Run("second wallet limit rejection is a hard failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.snapshot = &shared.Snapshot{
			Reservation: futureReservation(),
			WalletOptIn: true,
		}
		f.wallet.balance = dec("500")
		f.gateway.responses = []submitResponse{
			{err: &infra.WalletLimitError{AuthorityMax: dec("120")}},
			{err: &infra.WalletLimitError{AuthorityMax: dec("90")}},
		}

		_, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1600"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.ErrorIs(t, err, errs.ErrWalletLimitExceeded)
		assert.Len(t, f.gateway.submissions, 2)
		assert.Zero(t, f.store.cleared)
	})

	t.Run("invalid form reports every failing field at once", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form: shared.FormFields{
				Phone:   "123",
				PinCode: "5600",
			},
		})

		var verr *usecase.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "phone")
		assert.Contains(t, verr.Fields, "address_line1")
		assert.Contains(t, verr.Fields, "pin_code")
		assert.Empty(t, f.gateway.submissions)
	})

	t.Run("missing reservation blocks submission", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.ErrorIs(t, err, errs.ErrSlotRequired)
	})

	t.Run("expired reservation is cleared and re-selection forced", func(t *testing.T) {
		f := newFixture(t)
		customerID := uuid.New()
		stale := builder.NewReservationBuilder().
			WithDate("2026-03-07").
			Reconstruct()
		f.store.snapshot = &shared.Snapshot{Reservation: stale}
		f.monitors.Attach(customerID, stale, nil)

		_, err := f.uc.Submit(ctx, customerID, usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.ErrorIs(t, err, errs.ErrSlotExpired)

		assert.Equal(t, 1, f.store.deletedSlots)
		_, attached := f.monitors.Get(customerID)
		assert.False(t, attached)
		assert.Empty(t, f.gateway.submissions)
	})

	t.Run("expiring soon proceeds with a warning", func(t *testing.T) {
		f := newFixture(t)
		soon := builder.NewReservationBuilder().
			WithDate("2026-03-10").
			WithWindow("10:30", "12:30").
			Reconstruct()
		f.store.snapshot = &shared.Snapshot{Reservation: soon}

		result, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Warning)
	})

	t.Run("concurrent submission for the same customer is locked out", func(t *testing.T) {
		f := newFixture(t)
		customerID := uuid.New()
		f.store.snapshot = &shared.Snapshot{Reservation: futureReservation()}
		f.gateway.entered = make(chan struct{})
		f.gateway.released = make(chan struct{})

		params := usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		}

		done := make(chan error, 1)
		go func() {
			_, err := f.uc.Submit(ctx, customerID, params)
			done <- err
		}()

		<-f.gateway.entered
		_, err := f.uc.Submit(ctx, customerID, params)
		require.ErrorIs(t, err, errs.ErrSubmitInProgress)

		close(f.gateway.released)
		require.NoError(t, <-done)
	})

	t.Run("order service rejection maps to a rejection sentinel", func(t *testing.T) {
		f := newFixture(t)
		f.store.snapshot = &shared.Snapshot{Reservation: futureReservation()}
		f.gateway.responses = []submitResponse{
			{err: infra.WrapInfraErr("order declined", nil, infra.KindRemoteRejected)},
		}

		_, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.ErrorIs(t, err, errs.ErrOrderServiceRejected)
	})

	t.Run("order service outage maps to a remote failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.snapshot = &shared.Snapshot{Reservation: futureReservation()}
		f.gateway.responses = []submitResponse{
			{err: infra.WrapInfraErr("order service down", nil, infra.KindRemoteFailure)},
		}

		_, err := f.uc.Submit(ctx, uuid.New(), usecase.SubmitParams{
			Subtotal:  dec("1200"),
			ItemCount: 1,
			Form:      validForm(),
		})
		require.ErrorIs(t, err, errs.ErrRemoteCallFailed)
	})
}
