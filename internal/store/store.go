package store

import (
	"context"
	"errors"
	"time"

	"github.com/gigpay/backend/internal/models"
)

var (
	// ErrNotFound is returned by point reads when the row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrVersionConflict is returned by conditional updates when the stored
	// version no longer matches the version the caller read. The whole
	// atomic unit the update belongs to is rolled back.
	ErrVersionConflict = errors.New("store: version conflict")
)

// LedgerStore is the durable record of profiles, contracts, jobs and ledger
// entries. All mutation goes through Atomically; there is no direct write
// path that bypasses version checks.
type LedgerStore interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)

	// GetJob loads a job together with its owning contract.
	GetJob(ctx context.Context, id int64) (*models.Job, error)

	// GetContractForProfile loads a contract by id only if the given profile
	// is one of its parties; otherwise ErrNotFound.
	GetContractForProfile(ctx context.Context, id, profileID int64) (*models.Contract, error)

	// ListContractsForProfile returns the profile's non-terminated contracts.
	ListContractsForProfile(ctx context.Context, profileID int64) ([]models.Contract, error)

	// ListUnpaidJobsForProfile returns unpaid jobs on in_progress contracts
	// where the profile is either party.
	ListUnpaidJobsForProfile(ctx context.Context, profileID int64) ([]models.Job, error)

	// OutstandingDebt sums the prices of all unpaid jobs across the client's
	// contracts. It bounds deposits.
	OutstandingDebt(ctx context.Context, clientID int64) (int64, error)

	// Atomically runs fn against a transactional view of the store. Every
	// conditional update issued through the LedgerTx commits together with
	// the others or not at all; any error from fn, or any version conflict,
	// abandons the whole unit. Atomically never retries.
	Atomically(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of the store inside one atomic unit. Reads capture
// current versions; conditional updates are keyed on the versions the caller
// captured and fail with ErrVersionConflict when stale.
type LedgerTx interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	OutstandingDebt(ctx context.Context, clientID int64) (int64, error)

	// UpdateProfileBalance sets the profile's balance iff its stored version
	// still equals version, bumping the version on success.
	UpdateProfileBalance(ctx context.Context, id, newBalance, version int64) error

	// MarkJobPaid flips paid and sets the payment date iff the stored
	// version still equals version and the job is not already paid.
	MarkJobPaid(ctx context.Context, id int64, paidAt time.Time, version int64) error

	// AddLedgerEntry appends an audit entry for a balance movement.
	AddLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error
}
