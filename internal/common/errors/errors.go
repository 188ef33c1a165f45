package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies a class of failure that the display layer can react to.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	// Claim lifecycle
	ErrCodeInvalidToken   ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingWallet  ErrorCode = "MISSING_WALLET"
	ErrCodeMissingProof   ErrorCode = "MISSING_PROOF"
	ErrCodeClaimRejected  ErrorCode = "CLAIM_REJECTED"
	ErrCodeTransport      ErrorCode = "TRANSPORT_ERROR"
	ErrCodePollingTimeout ErrorCode = "POLLING_TIMEOUT"
	ErrCodeArtifact       ErrorCode = "ARTIFACT_ERROR"
)

// FallbackMessage is shown when a failure carries no message of its own.
const FallbackMessage = "Something went wrong. Please try again with a new code."

// AppError is a typed application error. Message is always safe to show to a user.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError by code, so errors.Is(err, errors.New(code, "")) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// IsValidation reports whether the error was caused by bad caller input.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeMissingProof, ErrCodeMissingWallet:
		return true
	}
	return false
}

// IsTerminal reports whether the error ends a claim flow. Artifact failures are local to one card.
func (e *AppError) IsTerminal() bool {
	return e.Code != ErrCodeArtifact
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Constructors for the claim lifecycle taxonomy.

func NewInvalidTokenError(reason string) *AppError {
	return New(ErrCodeInvalidToken, orFallback(reason, "This code is invalid, expired or already used."))
}

func NewMissingWalletError() *AppError {
	return New(ErrCodeMissingWallet, "No wallet address could be resolved for this account.")
}

func NewMissingProofError() *AppError {
	return New(ErrCodeMissingProof, "Please complete the human verification first.")
}

func NewClaimRejectedError(reason string) *AppError {
	return New(ErrCodeClaimRejected, orFallback(reason, "The claim was rejected."))
}

func NewTransportError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeTransport, "Could not reach the ledger. Check your connection and try again.").
		WithDetail("operation", operation)
}

func NewPollingTimeoutError(attempts int) *AppError {
	return New(ErrCodePollingTimeout, "Polling timeout: transaction took too long to process.").
		WithDetail("attempts", attempts)
}

func NewArtifactError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeArtifact, "Could not generate the card.").
		WithDetail("operation", operation)
}

// Generic constructors.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

func NewRateLimitError(service string) *AppError {
	return New(ErrCodeTooManyRequests, fmt.Sprintf("Rate limit exceeded for %s", service)).
		WithDetail("service", service)
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil && stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// UserMessage is the only way an error becomes display text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return orFallback(appErr.Message, FallbackMessage)
	}
	return FallbackMessage
}

func orFallback(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
