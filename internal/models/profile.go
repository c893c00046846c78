package models

import "time"

// ProfileKind distinguishes the two sides of the marketplace.
type ProfileKind string

const (
	ProfileKindClient     ProfileKind = "client"
	ProfileKindContractor ProfileKind = "contractor"
)

// Profile is an account holder. Balance is held in cents and must never go
// negative. Version backs optimistic locking: every committed mutation of the
// row increments it, and every write is conditioned on the version it read.
type Profile struct {
	ID         int64       `json:"id" db:"id"`
	FirstName  string      `json:"firstName" db:"first_name"`
	LastName   string      `json:"lastName" db:"last_name"`
	Profession string      `json:"profession" db:"profession"`
	Kind       ProfileKind `json:"kind" db:"kind"`
	Balance    int64       `json:"balance" db:"balance"` // in cents
	Version    int64       `json:"-" db:"version"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"`
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
