//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-service/internal/domain/promo"
	"checkout-service/internal/handler/api"
	"checkout-service/internal/pkg/errs"
	"checkout-service/internal/usecase"
	"checkout-service/internal/usecase/shared"
)

// stubCommands returns canned values per operation; unset operations fail
// loudly so a test cannot silently hit the wrong path.
type stubCommands struct {
	hydrate    func() (*usecase.CheckoutState, error)
	selectSlot func() (*usecase.SlotStatus, error)
	applyPromo func() (*promo.Application, error)
	quote      func() (*usecase.Quote, error)
	submit     func() (*usecase.SubmitResult, error)
	simpleErr  error
}

func (s *stubCommands) Hydrate(context.Context, uuid.UUID) (*usecase.CheckoutState, error) {
	return s.hydrate()
}

func (s *stubCommands) SelectSlot(context.Context, uuid.UUID, usecase.SelectSlotParams) (*usecase.SlotStatus, error) {
	return s.selectSlot()
}

func (s *stubCommands) ClearSlot(context.Context, uuid.UUID) error { return s.simpleErr }

func (s *stubCommands) ApplyPromo(context.Context, uuid.UUID, string, decimal.Decimal) (*promo.Application, error) {
	return s.applyPromo()
}

func (s *stubCommands) RemovePromo(context.Context, uuid.UUID) error { return s.simpleErr }

func (s *stubCommands) SetWalletOptIn(context.Context, uuid.UUID, bool) error { return s.simpleErr }

func (s *stubCommands) SaveForm(context.Context, uuid.UUID, shared.FormFields) error {
	return s.simpleErr
}

func (s *stubCommands) Quote(context.Context, uuid.UUID, decimal.Decimal) (*usecase.Quote, error) {
	return s.quote()
}

func (s *stubCommands) Submit(context.Context, uuid.UUID, usecase.SubmitParams) (*usecase.SubmitResult, error) {
	return s.submit()
}

func newTestRouter(commands usecase.CheckoutCommands) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := api.NewCheckoutHandler(commands)

	group := r.Group("/api/checkout/:customerId")
	group.GET("", h.GetState)
	group.GET("/quote", h.GetQuote)
	group.POST("/slot", h.SelectSlot)
	group.DELETE("/slot", h.ClearSlot)
	group.POST("/promo", h.ApplyPromo)
	group.POST("/submit", h.Submit)
	return r
}

func perform(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func basePath() string {
	return "/api/checkout/" + uuid.NewString()
}

func TestCheckoutHandlerStatusMapping(t *testing.T) {
	submitBody := `{"subtotal":"1200","item_count":1,"form":{"name":"Asha","phone":"9876543210","address_line1":"12 MG Road","pin_code":"560001"}}`

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"slot required", errs.ErrSlotRequired, http.StatusBadRequest},
		{"slot expired", errs.ErrSlotExpired, http.StatusConflict},
		{"submit in progress", errs.ErrSubmitInProgress, http.StatusConflict},
		{"wallet limit exceeded", errs.ErrWalletLimitExceeded, http.StatusUnprocessableEntity},
		{"order rejected", errs.ErrOrderServiceRejected, http.StatusUnprocessableEntity},
		{"remote failure", errs.ErrRemoteCallFailed, http.StatusBadGateway},
		{"store failure", errs.ErrCheckoutStoreFailed, http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newTestRouter(&stubCommands{
				submit: func() (*usecase.SubmitResult, error) { return nil, c.err },
			})

			rec := perform(t, r, http.MethodPost, basePath()+"/submit", submitBody)
			assert.Equal(t, c.wantStatus, rec.Code)
		})
	}

	t.Run("validation error carries the field map", func(t *testing.T) {
		r := newTestRouter(&stubCommands{
			submit: func() (*usecase.SubmitResult, error) {
				return nil, &usecase.ValidationError{Fields: map[string]string{"phone": "phone is required"}}
			},
		})

		rec := perform(t, r, http.MethodPost, basePath()+"/submit", submitBody)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Detail map[string]string `json:"detail"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "phone is required", body.Detail["phone"])
	})

	t.Run("successful submit returns 201", func(t *testing.T) {
		r := newTestRouter(&stubCommands{
			submit: func() (*usecase.SubmitResult, error) {
				return &usecase.SubmitResult{
					Receipt: &shared.OrderReceipt{OrderID: "ORD-9", Status: "accepted"},
				}, nil
			},
		})

		rec := perform(t, r, http.MethodPost, basePath()+"/submit", submitBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			OrderID string `json:"orderId"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ORD-9", body.OrderID)
	})
}

func TestCheckoutHandlerInputValidation(t *testing.T) {
	t.Run("malformed customer id", func(t *testing.T) {
		r := newTestRouter(&stubCommands{})

		rec := perform(t, r, http.MethodGet, "/api/checkout/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative quote subtotal", func(t *testing.T) {
		r := newTestRouter(&stubCommands{})

		rec := perform(t, r, http.MethodGet, basePath()+"/quote?subtotal=-5", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed slot body", func(t *testing.T) {
		r := newTestRouter(&stubCommands{})

		rec := perform(t, r, http.MethodPost, basePath()+"/slot", `{"slotId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
