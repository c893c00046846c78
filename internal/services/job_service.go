package services

import (
	"context"

	"github.com/gigpay/backend/internal/models"
	"github.com/gigpay/backend/internal/store"
)

// JobService serves the read-only job views; paying a job lives on
// LedgerService.
type JobService struct {
	store store.LedgerStore
}

func NewJobService(st store.LedgerStore) *JobService {
	return &JobService{store: st}
}

// ListUnpaid returns unpaid jobs on in_progress contracts where the profile
// is either party.
func (s *JobService) ListUnpaid(ctx context.Context, profileID int64) ([]models.Job, error) {
	return s.store.ListUnpaidJobsForProfile(ctx, profileID)
}
