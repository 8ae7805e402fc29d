package response

import (
	"checkout-service/internal/domain/pricing"
	"checkout-service/internal/domain/promo"
	"checkout-service/internal/usecase"
	"checkout-service/internal/usecase/shared"
)

// Monetary values are formatted to display strings only here, at the
// boundary.

type CountdownResponse struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type SlotResponse struct {
	SlotID         string             `json:"slotId"`
	Date           string             `json:"date"`
	StartTime      string             `json:"startTime"`
	EndTime        string             `json:"endTime"`
	PinCode        string             `json:"pinCode"`
	Classification string             `json:"classification"`
	Countdown      *CountdownResponse `json:"countdown,omitempty"`
}

type PromoResponse struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discountAmount"`
	MinOrderAmount string `json:"minOrderAmount"`
}

type BreakdownResponse struct {
	Subtotal       string `json:"subtotal"`
	PromoDiscount  string `json:"promoDiscount"`
	DeliveryCharge string `json:"deliveryCharge"`
	WalletDiscount string `json:"walletDiscount"`
	Total          string `json:"total"`
}

type QuoteResponse struct {
	Breakdown BreakdownResponse `json:"breakdown"`
	Promo     *PromoResponse    `json:"promo,omitempty"`
	Slot      *SlotResponse     `json:"slot,omitempty"`
}

type FormResponse struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Landmark     string `json:"landmark"`
	PinCode      string `json:"pinCode"`
}

type CheckoutStateResponse struct {
	Slot        *SlotResponse  `json:"slot,omitempty"`
	Promo       *PromoResponse `json:"promo,omitempty"`
	WalletOptIn bool           `json:"walletOptIn"`
	Form        *FormResponse  `json:"form,omitempty"`
}

type SubmitResponse struct {
	OrderID    string            `json:"orderId"`
	Status     string            `json:"status"`
	Breakdown  BreakdownResponse `json:"breakdown"`
	Reconciled bool              `json:"reconciled"`
	Warning    string            `json:"warning,omitempty"`
}

func FromSlotStatus(s *usecase.SlotStatus) *SlotResponse {
	if s == nil || s.Reservation == nil {
		return nil
	}
	resp := &SlotResponse{
		SlotID:         s.Reservation.SlotID(),
		Date:           s.Reservation.Date(),
		StartTime:      s.Reservation.Window().Start(),
		EndTime:        s.Reservation.Window().End(),
		PinCode:        s.Reservation.PinCode(),
		Classification: s.Classification.String(),
	}
	if s.Countdown != nil {
		resp.Countdown = &CountdownResponse{Hours: s.Countdown.Hours, Minutes: s.Countdown.Minutes}
	}
	return resp
}

func FromPromo(a *promo.Application) *PromoResponse {
	if a == nil {
		return nil
	}
	return &PromoResponse{
		Code:           a.Code(),
		DiscountAmount: a.DiscountAmount().StringFixed(2),
		MinOrderAmount: a.MinOrderAmount().StringFixed(2),
	}
}

func FromBreakdown(b pricing.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Subtotal:       b.Subtotal.StringFixed(2),
		PromoDiscount:  b.PromoDiscount.StringFixed(2),
		DeliveryCharge: b.DeliveryCharge.StringFixed(2),
		WalletDiscount: b.WalletDiscount.StringFixed(2),
		Total:          b.Total.StringFixed(2),
	}
}

func FromQuote(q *usecase.Quote) *QuoteResponse {
	return &QuoteResponse{
		Breakdown: FromBreakdown(q.Breakdown),
		Promo:     FromPromo(q.Promo),
		Slot:      FromSlotStatus(q.SlotStatus),
	}
}

func FromCheckoutState(state *usecase.CheckoutState) *CheckoutStateResponse {
	resp := &CheckoutStateResponse{
		Slot:        FromSlotStatus(state.SlotStatus),
		Promo:       FromPromo(state.Snapshot.Promo),
		WalletOptIn: state.Snapshot.WalletOptIn,
	}
	if !state.Snapshot.Form.IsEmpty() {
		resp.Form = fromFormFields(state.Snapshot.Form)
	}
	return resp
}

func FromSubmitResult(r *usecase.SubmitResult) *SubmitResponse {
	return &SubmitResponse{
		OrderID:    r.Receipt.OrderID,
		Status:     r.Receipt.Status,
		Breakdown:  FromBreakdown(r.Breakdown),
		Reconciled: r.Reconciled,
		Warning:    r.Warning,
	}
}

func fromFormFields(f shared.FormFields) *FormResponse {
	return &FormResponse{
		Name:         f.Name,
		Phone:        f.Phone,
		Email:        f.Email,
		AddressLine1: f.AddressLine1,
		AddressLine2: f.AddressLine2,
		Landmark:     f.Landmark,
		PinCode:      f.PinCode,
	}
}
