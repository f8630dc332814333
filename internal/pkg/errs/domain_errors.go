package errs

import "errors"

// Sentinel errors shared across the command and query layers.
// Callers distinguish "retry with a different target" (ErrSeatConflict,
// ErrQuotaExceeded) from "fix and resubmit" (ErrValidation,
// ErrDuplicateProofReference) from "terminal" (ErrInvalidStateTransition).
var (
	// Section errors
	ErrSectionNotFound = errors.New("section not found")
	ErrSeatConflict    = errors.New("no seat available")

	// Promotion errors
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrPromotionInactive = errors.New("promotion not active")
	ErrPromotionExpired  = errors.New("promotion outside validity window")
	ErrQuotaExceeded     = errors.New("promotion quota exceeded")
	ErrAlreadyEnrolled   = errors.New("applicant already enrolled in promotional section")

	// Request errors
	ErrRequestNotFound         = errors.New("enrollment request not found")
	ErrValidation              = errors.New("validation failed")
	ErrDuplicateProofReference = errors.New("proof reference already used")
	ErrInvalidStateTransition  = errors.New("invalid state transition")

	// Operation errors
	ErrPersistence = errors.New("persistence failure")
)
