package errs

import "errors"

// Domain-specific sentinel errors for the checkout usecase layer
var (
	// Slot errors
	ErrSlotRequired = errors.New("delivery slot required")
	ErrSlotExpired  = errors.New("delivery slot expired")
	ErrInvalidSlot  = errors.New("invalid delivery slot")

	// Promo errors
	ErrPromoRejected = errors.New("promo code rejected")

	// Wallet errors
	ErrWalletNotFound = errors.New("wallet not found")

	// Submission errors
	ErrSubmitInProgress     = errors.New("order submission already in progress")
	ErrWalletLimitExceeded  = errors.New("wallet redemption exceeds authority limit")
	ErrOrderServiceRejected = errors.New("order service rejected submission")
	ErrRemoteCallFailed     = errors.New("remote collaborator call failed")
	ErrCheckoutStoreFailed  = errors.New("checkout store operation failed")
)
