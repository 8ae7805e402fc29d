// Package orderclient submits orders to the order-acceptance service,
// the system-of-record that independently recomputes pricing and may
// reject a submission.
package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"checkout-service/internal/infra"
	"checkout-service/internal/usecase/shared"
)

const walletLimitCode = "WALLET_LIMIT_EXCEEDED"

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

type submitRequest struct {
	CustomerID       string  `json:"customer_id"`
	SlotID           string  `json:"slot_id"`
	DeliveryDate     string  `json:"delivery_date"`
	WindowStart      string  `json:"window_start"`
	WindowEnd        string  `json:"window_end"`
	PinCode          string  `json:"pin_code"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email,omitempty"`
	AddressLine1     string  `json:"address_line1"`
	AddressLine2     string  `json:"address_line2,omitempty"`
	Landmark         string  `json:"landmark,omitempty"`
	ItemCount        int     `json:"item_count"`
	Subtotal         string  `json:"subtotal"`
	PromoCode        *string `json:"promo_code,omitempty"`
	PromoDiscount    string  `json:"promo_discount"`
	DeliveryCharge   string  `json:"delivery_charge"`
	WalletAmountUsed string  `json:"wallet_amount_used"`
	Total            string  `json:"total"`
}

type submitResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type rejectionResponse struct {
	Error struct {
		Code            string `json:"code"`
		Message         string `json:"message"`
		MaxWalletAmount string `json:"max_wallet_amount,omitempty"`
	} `json:"error"`
}

func (c *Client) Submit(ctx context.Context, sub shared.OrderSubmission) (*shared.OrderReceipt, error) {
	wire := submitRequest{
		CustomerID:       sub.CustomerID.String(),
		SlotID:           sub.Reservation.SlotID(),
		DeliveryDate:     sub.Reservation.Date(),
		WindowStart:      sub.Reservation.Window().Start(),
		WindowEnd:        sub.Reservation.Window().End(),
		PinCode:          sub.Reservation.PinCode(),
		Name:             sub.Form.Name,
		Phone:            sub.Form.Phone,
		Email:            sub.Form.Email,
		AddressLine1:     sub.Form.AddressLine1,
		AddressLine2:     sub.Form.AddressLine2,
		Landmark:         sub.Form.Landmark,
		ItemCount:        sub.ItemCount,
		Subtotal:         sub.Breakdown.Subtotal.StringFixed(2),
		PromoCode:        sub.PromoCode,
		PromoDiscount:    sub.Breakdown.PromoDiscount.StringFixed(2),
		DeliveryCharge:   sub.Breakdown.DeliveryCharge.StringFixed(2),
		WalletAmountUsed: sub.Breakdown.WalletDiscount.StringFixed(2),
		Total:            sub.Breakdown.Total.StringFixed(2),
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, infra.WrapInfraErr("failed to encode order submission", err, infra.KindRemoteFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, infra.WrapInfraErr("failed to build order submission request", err, infra.KindRemoteFailure)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		// Timeouts land here too. No response means manual retry, never
		// automatic.
		return nil, infra.WrapInfraErr("order submission call failed", err, infra.KindRemoteFailure)
	}
	defer resp.Body.Close()

	body, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return nil, infra.WrapInfraErr("failed to read order service response", rerr, infra.KindRemoteFailure)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var ok submitResponse
		if derr := json.Unmarshal(body, &ok); derr != nil {
			return nil, infra.WrapInfraErr("failed to decode order service response", derr, infra.KindRemoteFailure)
		}
		return &shared.OrderReceipt{OrderID: ok.OrderID, Status: ok.Status}, nil
	}

	if resp.StatusCode >= 500 {
		return nil, infra.WrapInfraErr("order service unavailable", nil, infra.KindRemoteFailure)
	}

	var rejection rejectionResponse
	if derr := json.Unmarshal(body, &rejection); derr == nil && rejection.Error.Code == walletLimitCode {
		authorityMax, perr := decimal.NewFromString(rejection.Error.MaxWalletAmount)
		if perr == nil {
			return nil, &infra.WalletLimitError{AuthorityMax: authorityMax}
		}
		// A wallet-limit rejection without a usable ceiling cannot be
		// reconciled; fall through to the generic rejection.
	}

	return nil, infra.WrapInfraErr("order service rejected submission: "+rejection.Error.Message, nil, infra.KindRemoteRejected)
}
