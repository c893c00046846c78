package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gigpay/backend/internal/models"
)

// PostgresStore implements LedgerStore on database/sql. Conditional updates
// are compare-and-swap statements keyed on the version column; a zero
// RowsAffected means the row moved under us and surfaces ErrVersionConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is the subset of *sql.DB / *sql.Tx the read paths need, so the
// same scan code serves both the store and a transaction in flight.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	return getProfile(ctx, s.db, id)
}

func (s *PostgresStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	return getJob(ctx, s.db, id)
}

func (s *PostgresStore) OutstandingDebt(ctx context.Context, clientID int64) (int64, error) {
	return outstandingDebt(ctx, s.db, clientID)
}

func (s *PostgresStore) GetContractForProfile(ctx context.Context, id, profileID int64) (*models.Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.terms, c.status, c.client_id, c.contractor_id,
		       c.created_at, c.updated_at,
		       cl.first_name || ' ' || cl.last_name,
		       co.first_name || ' ' || co.last_name
		FROM contracts c
		JOIN profiles cl ON cl.id = c.client_id
		JOIN profiles co ON co.id = c.contractor_id
		WHERE c.id = $1 AND (c.client_id = $2 OR c.contractor_id = $2)`,
		id, profileID)

	var c models.Contract
	err := row.Scan(&c.ID, &c.Terms, &c.Status, &c.ClientID, &c.ContractorID,
		&c.CreatedAt, &c.UpdatedAt, &c.ClientName, &c.ContractorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract %d: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) ListContractsForProfile(ctx context.Context, profileID int64) ([]models.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.terms, c.status, c.client_id, c.contractor_id,
		       c.created_at, c.updated_at,
		       cl.first_name || ' ' || cl.last_name,
		       co.first_name || ' ' || co.last_name
		FROM contracts c
		JOIN profiles cl ON cl.id = c.client_id
		JOIN profiles co ON co.id = c.contractor_id
		WHERE (c.client_id = $1 OR c.contractor_id = $1)
		  AND c.status <> $2
		ORDER BY c.id`,
		profileID, models.ContractStatusTerminated)
	if err != nil {
		return nil, fmt.Errorf("list contracts for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.Terms, &c.Status, &c.ClientID, &c.ContractorID,
			&c.CreatedAt, &c.UpdatedAt, &c.ClientName, &c.ContractorName); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *PostgresStore) ListUnpaidJobsForProfile(ctx context.Context, profileID int64) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.id, j.description, j.price, j.paid, j.payment_date,
		       j.contract_id, j.version, j.created_at, j.updated_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE NOT j.paid
		  AND c.status = $2
		  AND (c.client_id = $1 OR c.contractor_id = $1)
		ORDER BY j.id`,
		profileID, models.ContractStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("list unpaid jobs for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Description, &j.Price, &j.Paid, &j.PaymentDate,
			&j.ContractID, &j.Version, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Atomically wraps fn in one sql.Tx. All conditional updates issued through
// the LedgerTx commit together; any error rolls the whole unit back.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin atomic unit: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit atomic unit: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	return getProfile(ctx, t.tx, id)
}

func (t *postgresTx) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	return getJob(ctx, t.tx, id)
}

func (t *postgresTx) OutstandingDebt(ctx context.Context, clientID int64) (int64, error) {
	return outstandingDebt(ctx, t.tx, clientID)
}

func (t *postgresTx) UpdateProfileBalance(ctx context.Context, id, newBalance, version int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE profiles
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now().UTC(), id, version)
	if err != nil {
		return fmt.Errorf("update balance of profile %d: %w", id, err)
	}
	return checkConditional(res)
}

func (t *postgresTx) MarkJobPaid(ctx context.Context, id int64, paidAt time.Time, version int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE jobs
		SET paid = TRUE, payment_date = $1, version = version + 1, updated_at = $1
		WHERE id = $2 AND version = $3 AND NOT paid`,
		paidAt, id, version)
	if err != nil {
		return fmt.Errorf("mark job %d paid: %w", id, err)
	}
	return checkConditional(res)
}

func (t *postgresTx) AddLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (transfer_id, profile_id, amount, entry_type, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.TransferID, entry.ProfileID, entry.Amount, entry.EntryType, entry.Balance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add ledger entry: %w", err)
	}
	return nil
}

func checkConditional(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func getProfile(ctx context.Context, q querier, id int64) (*models.Profile, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, profession, kind, balance, version, created_at, updated_at
		FROM profiles WHERE id = $1`, id)

	var p models.Profile
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Profession, &p.Kind,
		&p.Balance, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, err)
	}
	return &p, nil
}

func getJob(ctx context.Context, q querier, id int64) (*models.Job, error) {
	row := q.QueryRowContext(ctx, `
		SELECT j.id, j.description, j.price, j.paid, j.payment_date,
		       j.contract_id, j.version, j.created_at, j.updated_at,
		       c.id, c.terms, c.status, c.client_id, c.contractor_id,
		       c.created_at, c.updated_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = $1`, id)

	var j models.Job
	var c models.Contract
	err := row.Scan(&j.ID, &j.Description, &j.Price, &j.Paid, &j.PaymentDate,
		&j.ContractID, &j.Version, &j.CreatedAt, &j.UpdatedAt,
		&c.ID, &c.Terms, &c.Status, &c.ClientID, &c.ContractorID,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	j.Contract = &c
	return &j, nil
}

func outstandingDebt(ctx context.Context, q querier, clientID int64) (int64, error) {
	row := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = $1 AND NOT j.paid`, clientID)

	var debt int64
	if err := row.Scan(&debt); err != nil {
		return 0, fmt.Errorf("outstanding debt of client %d: %w", clientID, err)
	}
	return debt, nil
}
