package app

import (
	"errors"
	"fmt"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// ErrorType represents a generic category of error used as descriptor
// to clarify the nature of a failure that occurred in dependencies.
type ErrorType struct {
	s string
}

var (
	// ErrorTypeProviderFailure indicates a failure in a service dependency or provider.
	ErrorTypeProviderFailure = ErrorType{"provider-failure"}
	// ErrorTypeAuthorization indicates an authentication or authorization failure.
	ErrorTypeAuthorization = ErrorType{"authorization"}
	// ErrorTypeAccessForbidden indicates that access to a resource is forbidden.
	ErrorTypeAccessForbidden = ErrorType{"access-forbidden"}
	// ErrorTypeIncorrectInput indicates that the provided input is invalid or malformed.
	ErrorTypeIncorrectInput = ErrorType{"incorrect-input"}
	// ErrorTypeNotFound indicates a draft or coin the engine does not know.
	ErrorTypeNotFound = ErrorType{"not-found"}
	// ErrorTypeStateConflict indicates an operation illegal for the draft's
	// current status, including stale inputs discovered at broadcast.
	ErrorTypeStateConflict = ErrorType{"state-conflict"}
	// ErrorTypeUnbalancedDraft indicates a validator rejection: insufficient
	// funds or unreturned token surplus.
	ErrorTypeUnbalancedDraft = ErrorType{"unbalanced-draft"}
	// ErrorTypeRemoteRejected indicates the ledger node explicitly rejected
	// an operation.
	ErrorTypeRemoteRejected = ErrorType{"remote-rejected"}
	// ErrorTypeOperationTimeout indicates that an operation exceeded its time limit.
	ErrorTypeOperationTimeout = ErrorType{"operation-timeout"}
	// ErrorTypeUnknown indicates an unclassified or unexpected error.
	ErrorTypeUnknown = ErrorType{"unknown"}
)

// Error defines a generic application-layer error that should be translated
// into a specific response format for the requester.
//
// The error includes an err source message, a type indicating the category
// of the failure, and a slug string representing the error message content
// to be returned to the requester. The source message may carry internal
// detail; the slug is what goes to the caller.
type Error struct {
	err       string
	slug      string
	errorType ErrorType
}

// Slug returns the error slug identifier.
func (e Error) Slug() string { return e.slug }

// IsZero returns true if the error is the zero value.
func (e Error) IsZero() bool { return e == Error{} }

// Error returns the error message string.
func (e Error) Error() string { return e.err }

// ErrorType returns the type of error.
func (e Error) ErrorType() ErrorType { return e.errorType }

// NewIncorrectInputError returns an error that handles invalid input data,
// typically caused by inappropriate data formats or other issues related to
// incorrect input.
func NewIncorrectInputError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeIncorrectInput,
	}
}

// NewProviderFailureError returns an error that handles service dependency
// failures, internal processing issues, unavailability, connection problems,
// or other issues that should not be exposed to the requester.
func NewProviderFailureError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeProviderFailure,
	}
}

// NewAuthorizationError returns an error that handles authorization failures,
// such as missing or invalid credentials when attempting to access a restricted resource.
func NewAuthorizationError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeAuthorization,
	}
}

// NewAccessForbiddenError returns an error that handles access control failures,
// such as valid credentials without the necessary permissions to access a resource.
func NewAccessForbiddenError(err, slug string) Error {
	return Error{
		slug:      slug,
		err:       err,
		errorType: ErrorTypeAccessForbidden,
	}
}

// NewIncorrectInputWithFieldError returns an error indicating that a specific input field is invalid.
func NewIncorrectInputWithFieldError(field string) Error {
	msg := fmt.Sprintf("Unable to process the '%s' field. Please verify the content and try again.", field)
	return NewIncorrectInputError(msg, msg)
}

// NewUnknownError returns an error that represents an unexpected or unclassified
// issue that doesn't fall into predefined error categories.
func NewUnknownError(err, slug string) Error {
	return Error{
		slug:      slug,
		errorType: ErrorTypeUnknown,
		err:       err,
	}
}

// sessionErrorTypes maps every session failure kind onto the transport-facing
// error category. Validation failures are detected locally and cost no
// network round trip; remote failure kinds are produced only by the pipelines.
var sessionErrorTypes = map[session.FailureKind]ErrorType{
	session.KindNotFound:          ErrorTypeNotFound,
	session.KindCoinNotFound:      ErrorTypeNotFound,
	session.KindCoinSpent:         ErrorTypeStateConflict,
	session.KindInvalidState:      ErrorTypeStateConflict,
	session.KindStaleInputs:       ErrorTypeStateConflict,
	session.KindInvalidArgument:   ErrorTypeIncorrectInput,
	session.KindMalformedImport:   ErrorTypeIncorrectInput,
	session.KindInsufficientFunds: ErrorTypeUnbalancedDraft,
	session.KindUnbalancedToken:   ErrorTypeUnbalancedDraft,
	session.KindNetworkTimeout:    ErrorTypeOperationTimeout,
	session.KindRemoteRejected:    ErrorTypeRemoteRejected,
}

// NewSessionEngineError translates a session engine failure into the
// application error taxonomy. The engine's detail doubles as the slug: the
// session layer already phrases its failures for the caller, and remote
// rejections must reach the caller verbatim.
func NewSessionEngineError(err error) Error {
	var sessErr *session.Error
	if !errors.As(err, &sessErr) {
		return NewUnknownError(
			err.Error(),
			"Unable to process the request due to an internal error. Please try again later or contact the support team.",
		)
	}

	errorType, ok := sessionErrorTypes[sessErr.Kind]
	if !ok {
		errorType = ErrorTypeUnknown
	}
	return Error{
		err:       sessErr.Error(),
		slug:      sessErr.Detail,
		errorType: errorType,
	}
}

// NewNodeProviderError wraps a node query failure. Session-typed failures
// (remote rejection, timeout) keep their category; anything else is treated
// as a provider failure.
func NewNodeProviderError(err error) Error {
	var sessErr *session.Error
	if errors.As(err, &sessErr) {
		return NewSessionEngineError(err)
	}
	return NewProviderFailureError(
		err.Error(),
		"Unable to reach the ledger node. Please try again later or contact the support team.",
	)
}
