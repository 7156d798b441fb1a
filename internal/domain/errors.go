package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBlocked           = errors.New("account is blocked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// DenyReason names the eligibility check that refused a new listing.
type DenyReason string

const (
	DenyBlocked        DenyReason = "blocked"
	DenyQuotaExceeded  DenyReason = "quota_exceeded"
	DenyCooldownActive DenyReason = "cooldown_active"
	DenyDuplicate      DenyReason = "duplicate"
)

type EligibilityError struct {
	Reason DenyReason
}

func (e *EligibilityError) Error() string { return "posting denied: " + string(e.Reason) }

func Deny(r DenyReason) error { return &EligibilityError{Reason: r} }

// DenyReasonOf returns the reason carried by err, if any.
func DenyReasonOf(err error) (DenyReason, bool) {
	var ee *EligibilityError
	if errors.As(err, &ee) {
		return ee.Reason, true
	}
	return "", false
}
