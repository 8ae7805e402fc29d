package request

import (
	"github.com/shopspring/decimal"

	"checkout-service/internal/usecase"
	"checkout-service/internal/usecase/shared"
)

type SelectSlotRequest struct {
	SlotID    string `json:"slot_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	PinCode   string `json:"pin_code" binding:"required"`
}

func (r SelectSlotRequest) ToParams() usecase.SelectSlotParams {
	return usecase.SelectSlotParams{
		SlotID:    r.SlotID,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		PinCode:   r.PinCode,
	}
}

type ApplyPromoRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal string `json:"subtotal" binding:"required"`
}

func (r ApplyPromoRequest) SubtotalAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Subtotal)
}

type WalletOptInRequest struct {
	OptedIn *bool `json:"opted_in" binding:"required"`
}

type FormRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Landmark     string `json:"landmark"`
	PinCode      string `json:"pin_code"`
}

func (r FormRequest) ToFormFields() shared.FormFields {
	return shared.FormFields{
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		Landmark:     r.Landmark,
		PinCode:      r.PinCode,
	}
}

type SubmitRequest struct {
	Subtotal  string      `json:"subtotal" binding:"required"`
	ItemCount int         `json:"item_count" binding:"required,min=1"`
	Form      FormRequest `json:"form"`
}

func (r SubmitRequest) SubtotalAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Subtotal)
}
