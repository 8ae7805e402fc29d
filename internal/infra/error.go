package infra

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"checkout-service/internal/pkg/errs"
)

type InfraErrorKind string

type InfraError struct {
	Kind InfraErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e InfraError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e InfraError) Unwrap() error {
	return e.err
}

func WrapInfraErr(msg string, err error, kind InfraErrorKind) error {
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return InfraError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind InfraErrorKind) bool {
	var e InfraError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound       InfraErrorKind = "NOT_FOUND"
	KindStoreFailure   InfraErrorKind = "STORE_FAILURE"
	KindRemoteFailure  InfraErrorKind = "REMOTE_FAILURE"
	KindRemoteRejected InfraErrorKind = "REMOTE_REJECTED"
)

// WalletLimitError is the order service's structured rejection of a
// wallet redemption above its own computed ceiling. It carries the
// authority maximum so the caller can reconcile and resubmit.
type WalletLimitError struct {
	AuthorityMax decimal.Decimal
}

func (e *WalletLimitError) Error() string {
	return fmt.Sprintf("wallet redemption exceeds authority limit of %s", e.AuthorityMax.StringFixed(2))
}
