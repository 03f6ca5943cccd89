package repository

import "errors"

// Sentinel errors surfaced by repositories so services can map them onto
// policy-specific rejections.
var (
	// ErrTooManyPending: the requester is at the configured pending-request cap.
	ErrTooManyPending = errors.New("pending request limit reached")
	// ErrInsufficientBalance: available day balance is below the requested span.
	ErrInsufficientBalance = errors.New("insufficient day balance")
	// ErrOverlap: the range intersects an existing pending/approved request.
	ErrOverlap = errors.New("overlapping vacation request")
	// ErrHolidayBoundary: a boundary date falls on a configured holiday.
	ErrHolidayBoundary = errors.New("boundary date is a holiday")
	// ErrAlreadyResolved: the request left the expected state before the update.
	ErrAlreadyResolved = errors.New("request already resolved")
	// ErrDuplicateKey: unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrHasRequests: the user still owns vacation requests.
	ErrHasRequests = errors.New("user has vacation requests")
)
