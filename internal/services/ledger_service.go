package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gigpay/backend/internal/logger"
	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/store"
)

// LedgerService owns the two money-moving operations. Each one fast-fails on
// a pre-read, then re-reads and re-validates inside a single atomic unit
// whose conditional writes are keyed on the versions captured there. A lost
// race surfaces as ErrConcurrencyConflict; the service never retries.
type LedgerService struct {
	store store.LedgerStore
	log   *logger.Logger
}

func NewLedgerService(st store.LedgerStore, log *logger.Logger) *LedgerService {
	return &LedgerService{store: st, log: log}
}

// Deposit credits amount (cents) to the client's balance, bounded by 25% of
// their outstanding unpaid job total. Returns the profile with the new
// balance.
func (s *LedgerService) Deposit(ctx context.Context, profileID, amount int64) (*models.Profile, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.store.GetProfile(ctx, profileID); err != nil {
		return nil, mapProfileRead(err)
	}
	debt, err := s.store.OutstandingDebt(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDeposit(debt, amount); err != nil {
		return nil, err
	}

	var updated *models.Profile
	err = s.store.Atomically(ctx, func(tx store.LedgerTx) error {
		client, err := tx.GetProfile(ctx, profileID)
		if err != nil {
			return mapProfileRead(err)
		}
		debt, err := tx.OutstandingDebt(ctx, profileID)
		if err != nil {
			return err
		}
		if err := ValidateDeposit(debt, amount); err != nil {
			return err
		}

		newBalance := client.Balance + amount
		if err := tx.UpdateProfileBalance(ctx, client.ID, newBalance, client.Version); err != nil {
			return err
		}
		if err := tx.AddLedgerEntry(ctx, &models.LedgerEntry{
			TransferID: uuid.NewString(),
			ProfileID:  client.ID,
			Amount:     amount,
			EntryType:  models.EntryTypeCredit,
			Balance:    newBalance,
		}); err != nil {
			return err
		}

		client.Balance = newBalance
		client.Version++
		updated = client
		return nil
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	s.log.Info("deposit committed",
		"profile_id", profileID, "amount", amount, "balance", updated.Balance)
	return updated, nil
}

// PayJob moves the job's price from the paying client to the contractor and
// marks the job paid, all in one atomic unit. The three conditional writes
// commit together or not at all.
func (s *LedgerService) PayJob(ctx context.Context, jobID, clientID int64) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, mapJobRead(err)
	}
	if job.Contract.ClientID != clientID {
		return nil, ErrUnauthorized
	}
	client, err := s.store.GetProfile(ctx, clientID)
	if err != nil {
		return nil, mapProfileRead(err)
	}
	if _, err := s.store.GetProfile(ctx, job.Contract.ContractorID); err != nil {
		return nil, mapProfileRead(err)
	}
	if err := ValidatePayment(job, client); err != nil {
		return nil, err
	}

	var paid *models.Job
	err = s.store.Atomically(ctx, func(tx store.LedgerTx) error {
		job, err := tx.GetJob(ctx, jobID)
		if err != nil {
			return mapJobRead(err)
		}
		client, err := tx.GetProfile(ctx, clientID)
		if err != nil {
			return mapProfileRead(err)
		}
		contractor, err := tx.GetProfile(ctx, job.Contract.ContractorID)
		if err != nil {
			return mapProfileRead(err)
		}
		if err := ValidatePayment(job, client); err != nil {
			return err
		}

		transferID := uuid.NewString()
		now := time.Now().UTC()
		clientBalance := client.Balance - job.Price
		contractorBalance := contractor.Balance + job.Price

		if err := tx.UpdateProfileBalance(ctx, client.ID, clientBalance, client.Version); err != nil {
			return err
		}
		if err := tx.UpdateProfileBalance(ctx, contractor.ID, contractorBalance, contractor.Version); err != nil {
			return err
		}
		if err := tx.MarkJobPaid(ctx, job.ID, now, job.Version); err != nil {
			return err
		}
		if err := tx.AddLedgerEntry(ctx, &models.LedgerEntry{
			TransferID: transferID,
			ProfileID:  client.ID,
			Amount:     -job.Price,
			EntryType:  models.EntryTypeDebit,
			Balance:    clientBalance,
		}); err != nil {
			return err
		}
		if err := tx.AddLedgerEntry(ctx, &models.LedgerEntry{
			TransferID: transferID,
			ProfileID:  contractor.ID,
			Amount:     job.Price,
			EntryType:  models.EntryTypeCredit,
			Balance:    contractorBalance,
		}); err != nil {
			return err
		}

		job.Paid = true
		job.PaymentDate = &now
		job.Version++
		paid = job
		return nil
	})
	if err != nil {
		return nil, mapConflict(err)
	}

	s.log.Info("job paid",
		"job_id", paid.ID, "client_id", clientID,
		"contractor_id", paid.Contract.ContractorID, "price", paid.Price)
	return paid, nil
}

func mapConflict(err error) error {
	if errors.Is(err, store.ErrVersionConflict) {
		return fmt.Errorf("%w: %s", ErrConcurrencyConflict, err)
	}
	return err
}

func mapProfileRead(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}

func mapJobRead(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrJobNotFound
	}
	return err
}
