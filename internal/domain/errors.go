package domain

import "errors"

// Typed failures surfaced to callers. Handlers map these to HTTP statuses,
// services wrap them with context via fmt.Errorf("...: %w", err).
var (
	ErrNotFound                = errors.New("not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInvalidDateRange        = errors.New("invalid date range")
	ErrDuplicatePendingRequest = errors.New("duplicate pending request")
	ErrAccountSuspended        = errors.New("account suspended")
)
