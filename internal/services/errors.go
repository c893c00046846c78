package services

import "errors"

// Operation errors form a closed set matched with errors.Is. Transport
// adapters map them to status codes; nothing matches on message text.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrJobNotFound     = errors.New("job not found")

	// ErrUnauthorized means the caller is not the client on the job's
	// contract.
	ErrUnauthorized = errors.New("caller is not the client for this job")

	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrDepositExceedsLimit = errors.New("deposit amount exceeds 25% of unpaid jobs total")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// ErrAlreadyPaid rejects a second payment attempt on a paid job.
	ErrAlreadyPaid = errors.New("job is already paid")

	// ErrConcurrencyConflict means the operation lost an optimistic-lock
	// race and left no partial state. Safe for the caller to retry.
	ErrConcurrencyConflict = errors.New("concurrent update detected, retry the operation")
)
