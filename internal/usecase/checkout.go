package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/pricing"
	"checkout-service/internal/domain/promo"
	"checkout-service/internal/domain/slot"
	"checkout-service/internal/infra"
	"checkout-service/internal/monitor"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/pkg/config"
	"checkout-service/internal/pkg/errs"
	"checkout-service/internal/pkg/ptr"
	"checkout-service/internal/usecase/shared"
)

// ValidationError carries per-field messages. Fields never block each
// other; the whole map is reported at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed"
}

type SelectSlotParams struct {
	SlotID    string
	Date      string
	StartTime string
	EndTime   string
	PinCode   string
}

type SlotStatus struct {
	Reservation    *slot.Reservation
	Classification slot.Classification
	Countdown      *slot.Countdown
}

type CheckoutState struct {
	Snapshot   *shared.Snapshot
	SlotStatus *SlotStatus
}

type Quote struct {
	Breakdown  pricing.Breakdown
	Promo      *promo.Application
	SlotStatus *SlotStatus
}

type SubmitParams struct {
	Subtotal  decimal.Decimal
	ItemCount int
	Form      shared.FormFields
}

type SubmitResult struct {
	Receipt    *shared.OrderReceipt
	Breakdown  pricing.Breakdown
	Reconciled bool
	Warning    string
}

type CheckoutCommands interface {
	Hydrate(ctx context.Context, customerID uuid.UUID) (*CheckoutState, error)
	SelectSlot(ctx context.Context, customerID uuid.UUID, params SelectSlotParams) (*SlotStatus, error)
	ClearSlot(ctx context.Context, customerID uuid.UUID) error
	ApplyPromo(ctx context.Context, customerID uuid.UUID, code string, subtotal decimal.Decimal) (*promo.Application, error)
	RemovePromo(ctx context.Context, customerID uuid.UUID) error
	SetWalletOptIn(ctx context.Context, customerID uuid.UUID, optedIn bool) error
	SaveForm(ctx context.Context, customerID uuid.UUID, form shared.FormFields) error
	Quote(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal) (*Quote, error)
	Submit(ctx context.Context, customerID uuid.UUID, params SubmitParams) (*SubmitResult, error)
}

type checkoutUseCaseImpl struct {
	store          CheckoutStore
	promoValidator PromoValidator
	walletReader   WalletReader
	orderGateway   OrderGateway
	monitors       *monitor.Registry
	clock          clock.Clock
	logger         *slog.Logger

	freeDeliveryThreshold decimal.Decimal
	baseDeliveryCharge    decimal.Decimal

	// One writer per session: a submission in flight locks out duplicates
	// until the remote call resolves.
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewCheckoutUseCase(
	store CheckoutStore,
	promoValidator PromoValidator,
	walletReader WalletReader,
	orderGateway OrderGateway,
	monitors *monitor.Registry,
	clk clock.Clock,
	cfg config.CheckoutConfig,
	logger *slog.Logger,
) (CheckoutCommands, error) {
	threshold, err := cfg.FreeDeliveryThresholdAmount()
	if err != nil {
		return nil, errs.Wrap(err, "invalid free delivery threshold")
	}
	baseCharge, err := cfg.BaseDeliveryChargeAmount()
	if err != nil {
		return nil, errs.Wrap(err, "invalid base delivery charge")
	}

	return &checkoutUseCaseImpl{
		store:                 store,
		promoValidator:        promoValidator,
		walletReader:          walletReader,
		orderGateway:          orderGateway,
		monitors:              monitors,
		clock:                 clk,
		logger:                logger,
		freeDeliveryThreshold: threshold,
		baseDeliveryCharge:    baseCharge,
		inFlight:              make(map[uuid.UUID]struct{}),
	}, nil
}

// Hydrate loads the sanitized scope and, if a reservation survived,
// restarts its monitor. The monitor baselines without emitting, so a
// slot that is healthy at load time cannot spuriously report expiry.
func (u *checkoutUseCaseImpl) Hydrate(ctx context.Context, customerID uuid.UUID) (*CheckoutState, error) {
	snapshot, err := u.store.LoadSnapshot(ctx, customerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}

	state := &CheckoutState{Snapshot: snapshot}
	if snapshot.Reservation != nil {
		classification := u.monitors.Attach(customerID, snapshot.Reservation, u.transitionHandler(customerID))
		state.SlotStatus = &SlotStatus{
			Reservation:    snapshot.Reservation,
			Classification: classification,
			Countdown:      slot.CountdownTo(snapshot.Reservation, u.clock.Now()),
		}
	}
	return state, nil
}

func (u *checkoutUseCaseImpl) SelectSlot(ctx context.Context, customerID uuid.UUID, params SelectSlotParams) (*SlotStatus, error) {
	window, err := slot.NewWindow(params.StartTime, params.EndTime)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidSlot)
	}
	reservation, err := slot.NewReservation(params.SlotID, params.Date, window, params.PinCode)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidSlot)
	}

	// A slot that is already expired at selection time was never a valid
	// reservation; reject instead of persisting a dead selection.
	if slot.Classify(reservation, u.clock.Now()) == slot.ClassificationExpired {
		return nil, errs.ErrSlotExpired
	}

	if err := u.store.SaveSlot(ctx, customerID, reservation); err != nil {
		return nil, errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}

	classification := u.monitors.Attach(customerID, reservation, u.transitionHandler(customerID))
	return &SlotStatus{
		Reservation:    reservation,
		Classification: classification,
		Countdown:      slot.CountdownTo(reservation, u.clock.Now()),
	}, nil
}

func (u *checkoutUseCaseImpl) ClearSlot(ctx context.Context, customerID uuid.UUID) error {
	u.monitors.Detach(customerID)
	if err := u.store.DeleteSlot(ctx, customerID); err != nil {
		return errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	return nil
}

func (u *checkoutUseCaseImpl) ApplyPromo(ctx context.Context, customerID uuid.UUID, code string, subtotal decimal.Decimal) (*promo.Application, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errs.Mark(promo.ErrEmptyCode, errs.ErrPromoRejected)
	}

	application, err := u.promoValidator.Validate(ctx, code, subtotal)
	if err != nil {
		if infra.IsKind(err, infra.KindRemoteRejected) {
			return nil, errs.Mark(err, errs.ErrPromoRejected)
		}
		return nil, errs.Mark(err, errs.ErrRemoteCallFailed)
	}

	if err := u.store.SavePromo(ctx, customerID, application); err != nil {
		return nil, errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	return application, nil
}

func (u *checkoutUseCaseImpl) RemovePromo(ctx context.Context, customerID uuid.UUID) error {
	if err := u.store.DeletePromo(ctx, customerID); err != nil {
		return errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	return nil
}

func (u *checkoutUseCaseImpl) SetWalletOptIn(ctx context.Context, customerID uuid.UUID, optedIn bool) error {
	if err := u.store.SaveWalletOptIn(ctx, customerID, optedIn); err != nil {
		return errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	return nil
}

func (u *checkoutUseCaseImpl) SaveForm(ctx context.Context, customerID uuid.UUID, form shared.FormFields) error {
	if err := u.store.SaveForm(ctx, customerID, form); err != nil {
		return errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	return nil
}

// Quote recomputes the breakdown from current inputs. A promo whose
// min-order threshold the subtotal no longer meets is discarded here,
// silently, before composing.
func (u *checkoutUseCaseImpl) Quote(ctx context.Context, customerID uuid.UUID, subtotal decimal.Decimal) (*Quote, error) {
	snapshot, err := u.store.LoadSnapshot(ctx, customerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}

	application := u.dropUnsatisfiedPromo(ctx, customerID, snapshot.Promo, subtotal)

	wallet, err := u.walletState(ctx, customerID, snapshot.WalletOptIn)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Compose(pricing.Inputs{
		Subtotal:              subtotal,
		Promo:                 application,
		FreeDeliveryThreshold: u.freeDeliveryThreshold,
		BaseDeliveryCharge:    u.baseDeliveryCharge,
		Wallet:                wallet,
	})

	quote := &Quote{Breakdown: breakdown, Promo: application}
	if snapshot.Reservation != nil {
		quote.SlotStatus = &SlotStatus{
			Reservation:    snapshot.Reservation,
			Classification: slot.Classify(snapshot.Reservation, u.clock.Now()),
			Countdown:      slot.CountdownTo(snapshot.Reservation, u.clock.Now()),
		}
	}
	return quote, nil
}

// Submit gates the order behind validation in a fixed order: form fields,
// reservation presence, classification, then the remote call with the
// bounded wallet-limit reconciliation.
func (u *checkoutUseCaseImpl) Submit(ctx context.Context, customerID uuid.UUID, params SubmitParams) (*SubmitResult, error) {
	if !u.tryLock(customerID) {
		return nil, errs.ErrSubmitInProgress
	}
	defer u.unlock(customerID)

	if verr := validateForm(params.Form); verr != nil {
		return nil, verr
	}

	snapshot, err := u.store.LoadSnapshot(ctx, customerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrCheckoutStoreFailed)
	}
	if snapshot.Reservation == nil {
		return nil, errs.ErrSlotRequired
	}

	classification := slot.Classify(snapshot.Reservation, u.clock.Now())
	if classification.Blocks() {
		// Never silently substitute another slot: clear and force
		// re-selection.
		u.monitors.Detach(customerID)
		if derr := u.store.DeleteSlot(ctx, customerID); derr != nil {
			u.logger.Warn("failed to clear expired slot", "customer_id", customerID, "error", derr.Error())
		}
		return nil, errs.ErrSlotExpired
	}
	warning := ""
	if classification == slot.ClassificationExpiringSoon {
		warning = "delivery window opens soon"
	}

	application := u.dropUnsatisfiedPromo(ctx, customerID, snapshot.Promo, params.Subtotal)

	wallet, err := u.walletState(ctx, customerID, snapshot.WalletOptIn)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Compose(pricing.Inputs{
		Subtotal:              params.Subtotal,
		Promo:                 application,
		FreeDeliveryThreshold: u.freeDeliveryThreshold,
		BaseDeliveryCharge:    u.baseDeliveryCharge,
		Wallet:                wallet,
	})

	var promoCode *string
	if application != nil {
		promoCode = ptr.To(application.Code())
	}

	submission := shared.OrderSubmission{
		CustomerID:  customerID,
		Reservation: snapshot.Reservation,
		Form:        params.Form,
		Breakdown:   breakdown,
		PromoCode:   promoCode,
		ItemCount:   params.ItemCount,
	}

	receipt, finalBreakdown, reconciled, err := u.submitWithReconciliation(ctx, submission)
	if err != nil {
		return nil, err
	}

	u.finishSession(ctx, customerID)

	return &SubmitResult{
		Receipt:    receipt,
		Breakdown:  finalBreakdown,
		Reconciled: reconciled,
		Warning:    warning,
	}, nil
}

// submitWithReconciliation resubmits exactly once when the order service
// rejects with its own computed wallet ceiling. Rounding-mode drift
// between two independent pricing pipelines is expected to occur
// occasionally and should self-heal rather than hard-fail the customer.
// The returned breakdown is the one the order service accepted, which
// differs from the caller's after a reconciliation.
func (u *checkoutUseCaseImpl) submitWithReconciliation(ctx context.Context, submission shared.OrderSubmission) (*shared.OrderReceipt, pricing.Breakdown, bool, error) {
	receipt, err := u.orderGateway.Submit(ctx, submission)
	if err == nil {
		return receipt, submission.Breakdown, false, nil
	}

	var limitErr *infra.WalletLimitError
	if !errors.As(err, &limitErr) {
		return nil, submission.Breakdown, false, u.mapSubmitError(err)
	}

	capped := decimal.Min(submission.Breakdown.WalletDiscount, limitErr.AuthorityMax)
	u.logger.Info("reconciling wallet discount with authority maximum",
		"customer_id", submission.CustomerID,
		"ours", submission.Breakdown.WalletDiscount.StringFixed(2),
		"authority_max", limitErr.AuthorityMax.StringFixed(2),
	)
	submission.Breakdown = submission.Breakdown.WithWalletDiscount(capped)

	receipt, err = u.orderGateway.Submit(ctx, submission)
	if err == nil {
		return receipt, submission.Breakdown, true, nil
	}
	if errors.As(err, &limitErr) {
		// Second rejection is a hard failure; never loop.
		return nil, submission.Breakdown, false, errs.Mark(err, errs.ErrWalletLimitExceeded)
	}
	return nil, submission.Breakdown, false, u.mapSubmitError(err)
}

func (u *checkoutUseCaseImpl) mapSubmitError(err error) error {
	if infra.IsKind(err, infra.KindRemoteRejected) {
		return errs.Mark(err, errs.ErrOrderServiceRejected)
	}
	return errs.Mark(err, errs.ErrRemoteCallFailed)
}

// finishSession clears the persisted scope and stops the monitor so a
// completed order leaks nothing into the next session.
func (u *checkoutUseCaseImpl) finishSession(ctx context.Context, customerID uuid.UUID) {
	u.monitors.Detach(customerID)
	if err := u.store.Clear(ctx, customerID); err != nil {
		u.logger.Warn("failed to clear checkout scope after submission", "customer_id", customerID, "error", err.Error())
	}
}

func (u *checkoutUseCaseImpl) dropUnsatisfiedPromo(ctx context.Context, customerID uuid.UUID, application *promo.Application, subtotal decimal.Decimal) *promo.Application {
	if application == nil {
		return nil
	}
	if application.SatisfiedBy(subtotal) {
		return application
	}
	u.logger.Debug("dropping promo below min order amount",
		"customer_id", customerID,
		"code", application.Code(),
		"min_order", application.MinOrderAmount().StringFixed(2),
	)
	if err := u.store.DeletePromo(ctx, customerID); err != nil {
		u.logger.Warn("failed to delete unsatisfied promo", "customer_id", customerID, "error", err.Error())
	}
	return nil
}

func (u *checkoutUseCaseImpl) walletState(ctx context.Context, customerID uuid.UUID, optedIn bool) (pricing.WalletState, error) {
	if !optedIn {
		return pricing.WalletState{}, nil
	}
	balance, err := u.walletReader.GetBalance(ctx, customerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return pricing.WalletState{}, errs.Mark(err, errs.ErrWalletNotFound)
		}
		return pricing.WalletState{}, errs.Mark(err, errs.ErrRemoteCallFailed)
	}
	return pricing.WalletState{Balance: balance, OptedIn: true}, nil
}

// transitionHandler reacts to monitor events for one session. On expiry
// the persisted reservation is cleared and the customer must pick a new
// slot; the registry has already dropped the session by the time an
// expiry event reaches this handler.
func (u *checkoutUseCaseImpl) transitionHandler(customerID uuid.UUID) monitor.TransitionFunc {
	return func(ev monitor.Event) {
		u.logger.Info("slot classification changed",
			"customer_id", customerID,
			"slot_id", ev.SlotID,
			"classification", ev.Classification.String(),
		)
		if ev.Classification != slot.ClassificationExpired {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.store.DeleteSlot(ctx, customerID); err != nil {
			u.logger.Warn("failed to clear expired slot", "customer_id", customerID, "error", err.Error())
		}
	}
}

func (u *checkoutUseCaseImpl) tryLock(customerID uuid.UUID) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, busy := u.inFlight[customerID]; busy {
		return false
	}
	u.inFlight[customerID] = struct{}{}
	return true
}

func (u *checkoutUseCaseImpl) unlock(customerID uuid.UUID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inFlight, customerID)
}

func validateForm(form shared.FormFields) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(form.Name) == "" {
		fields["name"] = "name is required"
	}
	phone := strings.TrimSpace(form.Phone)
	switch {
	case phone == "":
		fields["phone"] = "phone is required"
	case len(phone) < 7:
		fields["phone"] = "phone number is too short"
	}
	if strings.TrimSpace(form.AddressLine1) == "" {
		fields["address_line1"] = "address is required"
	}
	pin := strings.TrimSpace(form.PinCode)
	switch {
	case pin == "":
		fields["pin_code"] = "pin code is required"
	case len(pin) != 6:
		fields["pin_code"] = "pin code must be 6 digits"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
