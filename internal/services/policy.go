package services

import "github.com/gigpay/backend/internal/models"

// DepositDebtRatio caps a client's self-deposit at this fraction of their
// outstanding unpaid job total.
const DepositDebtRatio = 0.25

// ValidateDeposit checks the deposit cap against already-loaded state.
// Amounts are cents; 0.25 scales exactly in float64, so the boundary is
// exact: a deposit of precisely the cap succeeds, one cent over fails.
func ValidateDeposit(outstandingDebt, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if float64(amount) > float64(outstandingDebt)*DepositDebtRatio {
		return ErrDepositExceedsLimit
	}
	return nil
}

// ValidatePayment checks that the client may pay the job: ownership first,
// then the one-way paid transition, then sufficiency.
func ValidatePayment(job *models.Job, client *models.Profile) error {
	if job.Contract == nil || job.Contract.ClientID != client.ID {
		return ErrUnauthorized
	}
	if job.Paid {
		return ErrAlreadyPaid
	}
	if client.Balance < job.Price {
		return ErrInsufficientFunds
	}
	return nil
}
