package models

import "time"

const (
	EntryTypeDebit  = "DEBIT"
	EntryTypeCredit = "CREDIT"
)

// LedgerEntry is one leg of a balance movement. The two legs of a job payment
// share a TransferID; a deposit writes a single CREDIT leg. Balance records
// the profile balance after the movement.
type LedgerEntry struct {
	ID         int64     `json:"id" db:"id"`
	TransferID string    `json:"transferId" db:"transfer_id"`
	ProfileID  int64     `json:"profileId" db:"profile_id"`
	Amount     int64     `json:"amount" db:"amount"` // in cents, negative for debits
	EntryType  string    `json:"entryType" db:"entry_type"`
	Balance    int64     `json:"balance" db:"balance"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
