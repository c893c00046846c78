package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpay/backend/internal/models"
)

func seedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	s.PutProfile(models.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "wizard", Kind: models.ProfileKindClient, Balance: 100000})
	s.PutProfile(models.Profile{ID: 2, FirstName: "Linus", LastName: "Torvalds", Profession: "programmer", Kind: models.ProfileKindContractor, Balance: 50000})
	s.PutContract(models.Contract{ID: 3, Terms: "kernel work", Status: models.ContractStatusInProgress, ClientID: 1, ContractorID: 2})
	s.PutJob(models.Job{ID: 7, Description: "write a scheduler", Price: 20000, ContractID: 3})
	return s
}

func TestMemoryStore_Reads(t *testing.T) {
	s := seedMemoryStore(t)
	ctx := context.Background()

	t.Run("job loads with its contract", func(t *testing.T) {
		job, err := s.GetJob(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, job.Contract)
		assert.Equal(t, int64(1), job.Contract.ClientID)
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		_, err := s.GetProfile(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetJob(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("outstanding debt sums unpaid jobs of the client", func(t *testing.T) {
		debt, err := s.OutstandingDebt(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), debt)

		debt, err = s.OutstandingDebt(ctx, 2)
		require.NoError(t, err)
		assert.Zero(t, debt)
	})

	t.Run("contract access is limited to its parties", func(t *testing.T) {
		_, err := s.GetContractForProfile(ctx, 3, 1)
		assert.NoError(t, err)
		_, err = s.GetContractForProfile(ctx, 3, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_VersionConflict(t *testing.T) {
	s := seedMemoryStore(t)
	ctx := context.Background()

	// A unit that captured version 0 must lose once an interfering write
	// commits in between.
	err := s.Atomically(ctx, func(tx LedgerTx) error {
		stale, err := tx.GetProfile(ctx, 1)
		require.NoError(t, err)

		interferer := s.Atomically(ctx, func(tx2 LedgerTx) error {
			p, err := tx2.GetProfile(ctx, 1)
			if err != nil {
				return err
			}
			return tx2.UpdateProfileBalance(ctx, 1, p.Balance+1, p.Version)
		})
		require.NoError(t, interferer)

		return tx.UpdateProfileBalance(ctx, 1, stale.Balance+500, stale.Version)
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	// Only the interfering write landed.
	p, err := s.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100001), p.Balance)
	assert.Equal(t, int64(1), p.Version)
}

func TestMemoryStore_AllOrNothing(t *testing.T) {
	s := seedMemoryStore(t)
	ctx := context.Background()

	err := s.Atomically(ctx, func(tx LedgerTx) error {
		client, err := tx.GetProfile(ctx, 1)
		require.NoError(t, err)
		if err := tx.UpdateProfileBalance(ctx, client.ID, client.Balance-20000, client.Version); err != nil {
			return err
		}
		// Stale version on the second write poisons the whole unit.
		return tx.UpdateProfileBalance(ctx, 2, 70000, 999)
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	client, err := s.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), client.Balance, "first write must not survive an aborted unit")
	assert.Zero(t, client.Version)
}

func TestMemoryStore_PaidIsOneWay(t *testing.T) {
	s := seedMemoryStore(t)
	ctx := context.Background()

	pay := func(version int64) error {
		return s.Atomically(ctx, func(tx LedgerTx) error {
			return tx.MarkJobPaid(ctx, 7, time.Now().UTC(), version)
		})
	}

	require.NoError(t, pay(0))

	job, err := s.GetJob(ctx, 7)
	require.NoError(t, err)
	assert.True(t, job.Paid)
	require.NotNil(t, job.PaymentDate)

	// Even with the bumped version, a second payment attempt conflicts.
	assert.ErrorIs(t, pay(job.Version), ErrVersionConflict)
}

func TestMemoryStore_ConcurrentWritersExactlyOneWins(t *testing.T) {
	s := seedMemoryStore(t)
	ctx := context.Background()

	const writers = 8
	start := make(chan struct{})
	errs := make([]error, writers)
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = s.Atomically(ctx, func(tx LedgerTx) error {
				p, err := tx.GetProfile(ctx, 1)
				if err != nil {
					return err
				}
				return tx.UpdateProfileBalance(ctx, 1, p.Balance+100, p.Version)
			})
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrVersionConflict)
		}
	}
	assert.GreaterOrEqual(t, wins, 1)

	// No lost updates: the balance reflects exactly the committed writes.
	p, err := s.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100000)+int64(wins)*100, p.Balance)
	assert.Equal(t, int64(wins), p.Version)
}
