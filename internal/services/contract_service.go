package services

import (
	"context"
	"errors"

	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/store"
)

var ErrContractNotFound = errors.New("contract not found")

// ContractService serves the read-only contract views. Contracts are created
// by provisioning flows outside this backend; nothing here writes.
type ContractService struct {
	store store.LedgerStore
}

func NewContractService(st store.LedgerStore) *ContractService {
	return &ContractService{store: st}
}

// GetByID returns the contract only when the profile is one of its parties.
func (s *ContractService) GetByID(ctx context.Context, id, profileID int64) (*models.Contract, error) {
	c, err := s.store.GetContractForProfile(ctx, id, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrContractNotFound
	}
	return c, err
}

// List returns the profile's non-terminated contracts.
func (s *ContractService) List(ctx context.Context, profileID int64) ([]models.Contract, error) {
	return s.store.ListContractsForProfile(ctx, profileID)
}
