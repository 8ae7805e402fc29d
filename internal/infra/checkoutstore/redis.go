// Package checkoutstore persists in-progress checkout selections in a
// durable, string-keyed scope so they survive page reloads. Each concern
// lives under its own key; there are no transactional guarantees across
// keys, so every key is sanitized independently on load.
package checkoutstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/promo"
	"checkout-service/internal/domain/slot"
	"checkout-service/internal/infra"
	"checkout-service/internal/pkg/clock"
	"checkout-service/internal/usecase/shared"
)

const (
	keySlot   = "slot"
	keyPromo  = "promo"
	keyWallet = "wallet"
	keyForm   = "form"
)

type Store struct {
	client *redis.Client
	clock  clock.Clock
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, c clock.Clock, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		clock:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func scopeKey(customerID uuid.UUID, suffix string) string {
	return "checkout:" + customerID.String() + ":" + suffix
}

// Raw records keep stored values as strings; the domain decides on load
// whether they are still trustworthy.
type slotRecord struct {
	SlotID    string `json:"slot_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	PinCode   string `json:"pin_code"`
}

type promoRecord struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discount_amount"`
	MinOrderAmount string `json:"min_order_amount"`
}

type walletRecord struct {
	OptedIn bool `json:"opted_in"`
}

// LoadSnapshot hydrates and sanitizes the persisted scope. Stale or
// corrupt values are dropped silently, never surfaced as errors: a
// reload must come up in a consistent state without punishing the
// customer for what the previous session left behind.
func (s *Store) LoadSnapshot(ctx context.Context, customerID uuid.UUID) (*shared.Snapshot, error) {
	snapshot := &shared.Snapshot{}

	reservation, err := s.loadSlot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	snapshot.Reservation = reservation

	application, err := s.loadPromo(ctx, customerID)
	if err != nil {
		return nil, err
	}
	snapshot.Promo = application

	optIn, err := s.loadWalletOptIn(ctx, customerID)
	if err != nil {
		return nil, err
	}
	snapshot.WalletOptIn = optIn

	form, err := s.loadForm(ctx, customerID)
	if err != nil {
		return nil, err
	}
	snapshot.Form = form

	return snapshot, nil
}

func (s *Store) loadSlot(ctx context.Context, customerID uuid.UUID) (*slot.Reservation, error) {
	var rec slotRecord
	found, err := s.getJSON(ctx, scopeKey(customerID, keySlot), &rec)
	if err != nil || !found {
		return nil, err
	}

	reservation := sanitizeSlot(rec, s.clock.Now())
	if reservation == nil {
		s.logger.Debug("discarding expired persisted slot", "customer_id", customerID, "slot_id", rec.SlotID)
		s.remove(ctx, scopeKey(customerID, keySlot))
	}
	return reservation, nil
}

// sanitizeSlot rebuilds a persisted reservation and discards it when it
// classifies Expired. Classification is fail-open, so unparseable dates
// survive as Valid here.
func sanitizeSlot(rec slotRecord, now time.Time) *slot.Reservation {
	reservation := slot.ReconstructReservation(
		rec.SlotID,
		rec.Date,
		slot.ReconstructWindow(rec.StartTime, rec.EndTime),
		rec.PinCode,
	)
	if slot.Classify(reservation, now) == slot.ClassificationExpired {
		return nil
	}
	return reservation
}

func (s *Store) loadPromo(ctx context.Context, customerID uuid.UUID) (*promo.Application, error) {
	var rec promoRecord
	found, err := s.getJSON(ctx, scopeKey(customerID, keyPromo), &rec)
	if err != nil || !found {
		return nil, err
	}

	application := sanitizePromo(rec)
	if application == nil {
		s.logger.Debug("discarding invalid persisted promo", "customer_id", customerID)
		s.remove(ctx, scopeKey(customerID, keyPromo))
	}
	return application, nil
}

// sanitizePromo rebuilds a persisted promo, dropping anything that fails
// the non-empty-code/positive-discount invariant. Empty code or zero
// discount means the promo does not exist, not that loading failed.
func sanitizePromo(rec promoRecord) *promo.Application {
	discount, derr := decimal.NewFromString(rec.DiscountAmount)
	minOrder, merr := decimal.NewFromString(rec.MinOrderAmount)
	if derr != nil || merr != nil {
		return nil
	}
	application, aerr := promo.NewApplication(rec.Code, discount, minOrder)
	if aerr != nil {
		return nil
	}
	return application
}

func (s *Store) loadWalletOptIn(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var rec walletRecord
	found, err := s.getJSON(ctx, scopeKey(customerID, keyWallet), &rec)
	if err != nil || !found {
		return false, err
	}
	return rec.OptedIn, nil
}

func (s *Store) loadForm(ctx context.Context, customerID uuid.UUID) (shared.FormFields, error) {
	var form shared.FormFields
	_, err := s.getJSON(ctx, scopeKey(customerID, keyForm), &form)
	if err != nil {
		return shared.FormFields{}, err
	}
	return form, nil
}

func (s *Store) SaveSlot(ctx context.Context, customerID uuid.UUID, r *slot.Reservation) error {
	rec := slotRecord{
		SlotID:    r.SlotID(),
		Date:      r.Date(),
		StartTime: r.Window().Start(),
		EndTime:   r.Window().End(),
		PinCode:   r.PinCode(),
	}
	return s.setJSON(ctx, scopeKey(customerID, keySlot), rec)
}

func (s *Store) DeleteSlot(ctx context.Context, customerID uuid.UUID) error {
	return s.del(ctx, scopeKey(customerID, keySlot))
}

func (s *Store) SavePromo(ctx context.Context, customerID uuid.UUID, a *promo.Application) error {
	rec := promoRecord{
		Code:           a.Code(),
		DiscountAmount: a.DiscountAmount().String(),
		MinOrderAmount: a.MinOrderAmount().String(),
	}
	return s.setJSON(ctx, scopeKey(customerID, keyPromo), rec)
}

func (s *Store) DeletePromo(ctx context.Context, customerID uuid.UUID) error {
	return s.del(ctx, scopeKey(customerID, keyPromo))
}

func (s *Store) SaveWalletOptIn(ctx context.Context, customerID uuid.UUID, optedIn bool) error {
	return s.setJSON(ctx, scopeKey(customerID, keyWallet), walletRecord{OptedIn: optedIn})
}

func (s *Store) SaveForm(ctx context.Context, customerID uuid.UUID, form shared.FormFields) error {
	return s.setJSON(ctx, scopeKey(customerID, keyForm), form)
}

// Clear wipes the whole scope. Runs after a successful submission so a
// completed order's state never leaks into the next session.
func (s *Store) Clear(ctx context.Context, customerID uuid.UUID) error {
	keys := []string{
		scopeKey(customerID, keySlot),
		scopeKey(customerID, keyPromo),
		scopeKey(customerID, keyWallet),
		scopeKey(customerID, keyForm),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return infra.WrapInfraErr("failed to clear checkout scope", err, infra.KindStoreFailure)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, infra.WrapInfraErr("failed to read checkout scope key", err, infra.KindStoreFailure)
	}
	if uerr := json.Unmarshal([]byte(raw), out); uerr != nil {
		// Partial or corrupt write: the key is independently dropped.
		s.logger.Debug("discarding corrupt checkout scope key", "key", key, "error", uerr.Error())
		s.remove(ctx, key)
		return false, nil
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return infra.WrapInfraErr("failed to encode checkout scope value", err, infra.KindStoreFailure)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return infra.WrapInfraErr("failed to write checkout scope key", err, infra.KindStoreFailure)
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return infra.WrapInfraErr("failed to delete checkout scope key", err, infra.KindStoreFailure)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("failed to drop sanitized checkout scope key", "key", key, "error", err.Error())
	}
}
