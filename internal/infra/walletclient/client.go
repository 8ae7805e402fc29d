// Package walletclient reads store-credit balances from the external
// wallet service. The balance is owned there; this subsystem never
// mutates it.
package walletclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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

type balanceResponse struct {
	Balance string `json:"balance"`
}

func (c *Client) GetBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wallets/"+customerID.String(), nil)
	if err != nil {
		return decimal.Zero, infra.WrapInfraErr("failed to build wallet balance request", err, infra.KindRemoteFailure)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return decimal.Zero, infra.WrapInfraErr("wallet balance call failed", err, infra.KindRemoteFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return decimal.Zero, infra.WrapInfraErr("wallet not found", nil, infra.KindNotFound)
	}
	if resp.StatusCode >= 400 {
		return decimal.Zero, infra.WrapInfraErr("wallet service returned error status", nil, infra.KindRemoteFailure)
	}

	var body balanceResponse
	if derr := json.NewDecoder(resp.Body).Decode(&body); derr != nil {
		return decimal.Zero, infra.WrapInfraErr("failed to decode wallet balance response", derr, infra.KindRemoteFailure)
	}

	balance, berr := decimal.NewFromString(body.Balance)
	if berr != nil || balance.IsNegative() {
		return decimal.Zero, infra.WrapInfraErr("wallet service returned unparseable balance", berr, infra.KindRemoteFailure)
	}
	return balance, nil
}
