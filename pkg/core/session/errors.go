package session

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FailureKind classifies session engine failures so callers can translate
// them into transport-level responses without parsing message text.
type FailureKind string

const (
	// KindNotFound indicates an unknown draft identifier.
	KindNotFound FailureKind = "not-found"
	// KindCoinNotFound indicates a coin identifier the ledger has never seen.
	KindCoinNotFound FailureKind = "coin-not-found"
	// KindCoinSpent indicates a coin that exists but is no longer spendable.
	KindCoinSpent FailureKind = "coin-already-spent"
	// KindInvalidState indicates an operation that is illegal for the
	// draft's current status, including duplicate ids at creation.
	KindInvalidState FailureKind = "invalid-state"
	// KindInvalidArgument indicates malformed caller input detected locally.
	KindInvalidArgument FailureKind = "invalid-argument"
	// KindInsufficientFunds indicates inputs that do not cover outputs plus
	// fee for some token.
	KindInsufficientFunds FailureKind = "insufficient-funds"
	// KindUnbalancedToken indicates a non-base token with leftover surplus
	// and no explicit change output.
	KindUnbalancedToken FailureKind = "unbalanced-token"
	// KindStaleInputs indicates a coin spent between resolution and broadcast.
	KindStaleInputs FailureKind = "stale-inputs"
	// KindMalformedImport indicates an export encoding that failed to parse.
	KindMalformedImport FailureKind = "malformed-import"
	// KindNetworkTimeout indicates an outbound node call exceeded its deadline.
	KindNetworkTimeout FailureKind = "network-timeout"
	// KindRemoteRejected indicates the node explicitly rejected an operation;
	// the node's detail is carried verbatim.
	KindRemoteRejected FailureKind = "remote-rejected"
)

// Error is the session engine's failure type: a kind plus human-readable
// detail. Remote rejections carry the node's message verbatim in Detail.
type Error struct {
	Kind   FailureKind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Errorf builds a session error of the given kind with a formatted detail.
func Errorf(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// NewDraftNotFoundError reports an unknown draft id.
func NewDraftNotFoundError(id string) *Error {
	return Errorf(KindNotFound, "draft %q does not exist", id)
}

// NewDuplicateDraftError reports a creation attempt with an id that is
// already active. Duplicate ids are rejected, never silently overwritten.
func NewDuplicateDraftError(id string) *Error {
	return Errorf(KindInvalidState, "draft %q already exists", id)
}

// NewInvalidStateError reports an operation illegal for the current status.
func NewInvalidStateError(op string, status Status) *Error {
	return Errorf(KindInvalidState, "cannot %s a draft in status %s", op, status)
}

// NewCoinNotFoundError reports a coin id the ledger has never seen.
func NewCoinNotFoundError(coinID string) *Error {
	return Errorf(KindCoinNotFound, "coin %q does not exist", coinID)
}

// NewCoinSpentError reports a coin that exists but has already been consumed.
func NewCoinSpentError(coinID string) *Error {
	return Errorf(KindCoinSpent, "coin %q has already been spent", coinID)
}

// NewInsufficientFundsError names the offending token and the shortfall.
func NewInsufficientFundsError(tokenID string, shortfall decimal.Decimal) *Error {
	return Errorf(KindInsufficientFunds, "inputs for token %s are short by %s", tokenID, shortfall.String())
}

// NewUnbalancedTokenError reports leftover non-base surplus without an
// explicit change output.
func NewUnbalancedTokenError(tokenID string, surplus decimal.Decimal) *Error {
	return Errorf(KindUnbalancedToken, "token %s has unreturned surplus of %s; add an explicit change output", tokenID, surplus.String())
}

// NewStaleInputsError reports inputs no longer spendable at broadcast time.
func NewStaleInputsError(coinID string) *Error {
	return Errorf(KindStaleInputs, "input coin %q is no longer spendable", coinID)
}

// NewMalformedImportError reports an export encoding that failed validation.
func NewMalformedImportError(detail string) *Error {
	return Errorf(KindMalformedImport, "malformed draft encoding: %s", detail)
}

// NewNetworkTimeoutError reports an outbound node call that exceeded its
// deadline. The draft is left in its prior state.
func NewNetworkTimeoutError(op string) *Error {
	return Errorf(KindNetworkTimeout, "node call timed out during %s", op)
}

// NewRemoteRejectedError wraps a node rejection, passing its detail verbatim.
func NewRemoteRejectedError(detail string) *Error {
	return &Error{Kind: KindRemoteRejected, Detail: detail}
}
