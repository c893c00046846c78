package models

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract binds one client and one contractor and gates which jobs may be
// paid. The ledger core never mutates contracts.
type Contract struct {
	ID           int64          `json:"id" db:"id"`
	Terms        string         `json:"terms" db:"terms"`
	Status       ContractStatus `json:"status" db:"status"`
	ClientID     int64          `json:"clientId" db:"client_id"`
	ContractorID int64          `json:"contractorId" db:"contractor_id"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`

	// Party names, populated by list/get reads for API responses.
	ClientName     string `json:"clientName,omitempty" db:"-"`
	ContractorName string `json:"contractorName,omitempty" db:"-"`
}
