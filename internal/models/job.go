package models

import "time"

// Job is a billable unit of work under a contract, payable at most once.
// PaymentDate is non-nil exactly when Paid is true. Version works the same
// way as Profile.Version.
type Job struct {
	ID          int64      `json:"id" db:"id"`
	Description string     `json:"description" db:"description"`
	Price       int64      `json:"price" db:"price"` // in cents
	Paid        bool       `json:"paid" db:"paid"`
	PaymentDate *time.Time `json:"paymentDate" db:"payment_date"`
	ContractID  int64      `json:"contractId" db:"contract_id"`
	Version     int64      `json:"-" db:"version"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Owning contract, loaded alongside the job by store reads that need to
	// authorize payment.
	Contract *Contract `json:"contract,omitempty" db:"-"`
}
