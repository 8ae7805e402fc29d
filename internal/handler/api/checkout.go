package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	reqdto "checkout-service/internal/handler/dto/request"
	resdto "checkout-service/internal/handler/dto/response"
	"checkout-service/internal/handler/httperr"
	"checkout-service/internal/pkg/errs"
	"checkout-service/internal/usecase"
)

type CheckoutHandler struct {
	checkout usecase.CheckoutCommands
}

func NewCheckoutHandler(checkout usecase.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// @Summary Get checkout state
// @Description Hydrate the persisted checkout selections for a customer
// @Tags checkout
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} resdto.CheckoutStateResponse
// @Failure 400 {object} httperr.Response
// @Router /checkout/{customerId} [get]
func (h *CheckoutHandler) GetState(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	state, err := h.checkout.Hydrate(c.Request.Context(), customerID)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutState(state))
}

// @Summary Get price quote
// @Description Recompute the price breakdown for the current selections
// @Tags checkout
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param subtotal query string true "Cart subtotal"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Router /checkout/{customerId}/quote [get]
func (h *CheckoutHandler) GetQuote(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	subtotal, err := decimal.NewFromString(c.Query("subtotal"))
	if err != nil || subtotal.IsNegative() {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.New("invalid subtotal"), "Invalid subtotal", nil)
		return
	}

	quote, err := h.checkout.Quote(c.Request.Context(), customerID, subtotal)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromQuote(quote))
}

// @Summary Select delivery slot
// @Description Reserve a delivery date and time window
// @Tags checkout
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param request body reqdto.SelectSlotRequest true "Slot selection"
// @Success 200 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /checkout/{customerId}/slot [post]
func (h *CheckoutHandler) SelectSlot(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req reqdto.SelectSlotRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	status, err := h.checkout.SelectSlot(c.Request.Context(), customerID, req.ToParams())
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlotStatus(status))
}

// @Summary Clear delivery slot
// @Tags checkout
// @Param customerId path string true "Customer ID"
// @Success 204
// @Router /checkout/{customerId}/slot [delete]
func (h *CheckoutHandler) ClearSlot(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	if err := h.checkout.ClearSlot(c.Request.Context(), customerID); err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Apply promo code
// @Description Validate a promo code against the external collaborator and persist it
// @Tags checkout
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param request body reqdto.ApplyPromoRequest true "Promo application"
// @Success 200 {object} resdto.PromoResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /checkout/{customerId}/promo [post]
func (h *CheckoutHandler) ApplyPromo(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req reqdto.ApplyPromoRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	subtotal, serr := req.SubtotalAmount()
	if serr != nil || subtotal.IsNegative() {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.New("invalid subtotal"), "Invalid subtotal", nil)
		return
	}

	application, err := h.checkout.ApplyPromo(c.Request.Context(), customerID, req.Code, subtotal)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPromo(application))
}

// @Summary Remove promo code
// @Tags checkout
// @Param customerId path string true "Customer ID"
// @Success 204
// @Router /checkout/{customerId}/promo [delete]
func (h *CheckoutHandler) RemovePromo(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	if err := h.checkout.RemovePromo(c.Request.Context(), customerID); err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set wallet opt-in
// @Tags checkout
// @Accept json
// @Param customerId path string true "Customer ID"
// @Param request body reqdto.WalletOptInRequest true "Wallet preference"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Router /checkout/{customerId}/wallet [put]
func (h *CheckoutHandler) SetWalletOptIn(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req reqdto.WalletOptInRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.checkout.SetWalletOptIn(c.Request.Context(), customerID, *req.OptedIn); err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Save checkout form
// @Description Persist the contact/address form snapshot
// @Tags checkout
// @Accept json
// @Param customerId path string true "Customer ID"
// @Param request body reqdto.FormRequest true "Form fields"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Router /checkout/{customerId}/form [put]
func (h *CheckoutHandler) SaveForm(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req reqdto.FormRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if err := h.checkout.SaveForm(c.Request.Context(), customerID, req.ToFormFields()); err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Submit order
// @Description Validate the checkout and submit to the order-acceptance service
// @Tags checkout
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param request body reqdto.SubmitRequest true "Order submission"
// @Success 201 {object} resdto.SubmitResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /checkout/{customerId}/submit [post]
func (h *CheckoutHandler) Submit(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req reqdto.SubmitRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	subtotal, serr := req.SubtotalAmount()
	if serr != nil || subtotal.IsNegative() {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.New("invalid subtotal"), "Invalid subtotal", nil)
		return
	}

	result, err := h.checkout.Submit(c.Request.Context(), customerID, usecase.SubmitParams{
		Subtotal:  subtotal,
		ItemCount: req.ItemCount,
		Form:      req.Form.ToFormFields(),
	})
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSubmitResult(result))
}

func (h *CheckoutHandler) customerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid customer ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *CheckoutHandler) abortWithMappedError(c *gin.Context, err error) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, errs.ErrInvalidSlot):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid delivery slot", nil)
	case errors.Is(err, errs.ErrSlotRequired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Delivery slot required", nil)
	case errors.Is(err, errs.ErrSlotExpired):
		httperr.AbortWithError(c, http.StatusConflict, err, "Delivery slot expired, please select a new slot", nil)
	case errors.Is(err, errs.ErrSubmitInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Order submission already in progress", nil)
	case errors.Is(err, errs.ErrWalletNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Wallet not found", nil)
	case errors.Is(err, errs.ErrPromoRejected):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Promo code rejected", nil)
	case errors.Is(err, errs.ErrWalletLimitExceeded):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Wallet redemption exceeds limit", nil)
	case errors.Is(err, errs.ErrOrderServiceRejected):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Order was rejected", nil)
	case errors.Is(err, errs.ErrRemoteCallFailed):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Upstream service unavailable, please retry", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
