package httperr

import "errors"

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// ===============================
// Typed error taxonomy
// ===============================

// ValidationError: malformed input, caller's fault. Never retried.
type ValidationError struct {
	Field string
	Code  string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Code
	}
	return e.Field + ": " + e.Code
}

func ErrValidation(field, code string) error {
	return ValidationError{Field: field, Code: code}
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError: admission rejected for a business reason. Carries the
// specific reason so the caller can explain it to the client.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return e.Reason
}

func ErrConflict(reason string) error {
	return ConflictError{Reason: reason}
}

func ConflictReason(err error) (string, bool) {
	var ce ConflictError
	if errors.As(err, &ce) {
		return ce.Reason, true
	}
	return "", false
}

// NotFoundError: referenced entity absent.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return e.Entity + "_not_found"
}

func ErrNotFound(entity string) error {
	return NotFoundError{Entity: entity}
}

func IsNotFound(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// SignatureError: webhook signature invalid. Always hard-rejected.
type SignatureError struct{}

func (SignatureError) Error() string {
	return "invalid_signature"
}

func IsSignature(err error) bool {
	var se SignatureError
	return errors.As(err, &se)
}

// UpstreamError: backing store or payment processor unavailable. Safe for
// the caller to retry with backoff; never auto-retried here.
type UpstreamError struct {
	Op  string
	Err error
}

func (e UpstreamError) Error() string {
	return "upstream: " + e.Op + ": " + e.Err.Error()
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}

func ErrUpstream(op string, err error) error {
	return UpstreamError{Op: op, Err: err}
}

func IsUpstream(err error) bool {
	var ue UpstreamError
	return errors.As(err, &ue)
}
