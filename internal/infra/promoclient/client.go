// Package promoclient calls the external promo-validation collaborator.
// This subsystem never validates codes itself; any non-valid or
// non-positive-discount answer means "no promo applied".
package promoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"checkout-service/internal/domain/promo"
	"checkout-service/internal/infra"
)

type Client struct {
	hc      *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type validateRequest struct {
	Code        string `json:"code"`
	OrderAmount string `json:"order_amount"`
}

type validateResponse struct {
	Valid          bool   `json:"valid"`
	DiscountAmount string `json:"discount_amount"`
	MinOrderAmount string `json:"min_order_amount"`
	Reason         string `json:"reason,omitempty"`
}

func (c *Client) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*promo.Application, error) {
	payload, err := json.Marshal(validateRequest{
		Code:        code,
		OrderAmount: orderAmount.StringFixed(2),
	})
	if err != nil {
		return nil, infra.WrapInfraErr("failed to encode promo validation request", err, infra.KindRemoteFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/promos/validate", bytes.NewReader(payload))
	if err != nil {
		return nil, infra.WrapInfraErr("failed to build promo validation request", err, infra.KindRemoteFailure)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, infra.WrapInfraErr("promo validation call failed", err, infra.KindRemoteFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, infra.WrapInfraErr("promo service unavailable", nil, infra.KindRemoteFailure)
	}

	var body validateResponse
	if derr := json.NewDecoder(resp.Body).Decode(&body); derr != nil {
		return nil, infra.WrapInfraErr("failed to decode promo validation response", derr, infra.KindRemoteFailure)
	}

	if resp.StatusCode >= 400 || !body.Valid {
		return nil, infra.WrapInfraErr("promo code rejected: "+body.Reason, nil, infra.KindRemoteRejected)
	}

	discount, derr := decimal.NewFromString(body.DiscountAmount)
	if derr != nil {
		return nil, infra.WrapInfraErr("promo service returned unparseable discount", derr, infra.KindRemoteFailure)
	}
	minOrder, merr := decimal.NewFromString(body.MinOrderAmount)
	if merr != nil {
		return nil, infra.WrapInfraErr("promo service returned unparseable min order amount", merr, infra.KindRemoteFailure)
	}

	application, aerr := promo.NewApplication(code, discount, minOrder)
	if aerr != nil {
		// A zero-discount "valid" answer is treated as a rejection.
		return nil, infra.WrapInfraErr("promo validation produced no usable discount", aerr, infra.KindRemoteRejected)
	}
	return application, nil
}
