package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gigpay/backend/internal/models"
)

// MemoryStore is an in-memory LedgerStore with the same optimistic semantics
// as the Postgres implementation: reads capture versions, writes are staged
// inside the atomic unit, and the commit verifies every captured version
// under one lock before applying anything. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[int64]*models.Profile
	contracts map[int64]*models.Contract
	jobs      map[int64]*models.Job
	entries   []models.LedgerEntry
	entrySeq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[int64]*models.Profile),
		contracts: make(map[int64]*models.Contract),
		jobs:      make(map[int64]*models.Job),
	}
}

// PutProfile seeds or replaces a profile row.
func (s *MemoryStore) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &p
}

// PutContract seeds or replaces a contract row.
func (s *MemoryStore) PutContract(c models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ClientName, c.ContractorName = "", ""
	s.contracts[c.ID] = &c
}

// PutJob seeds or replaces a job row.
func (s *MemoryStore) PutJob(j models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.Contract = nil
	s.jobs[j.ID] = &j
}

// LedgerEntries returns a snapshot of the audit trail.
func (s *MemoryStore) LedgerEntries() []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *MemoryStore) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileLocked(id)
}

func (s *MemoryStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobLocked(id)
}

func (s *MemoryStore) GetContractForProfile(ctx context.Context, id, profileID int64) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok || (c.ClientID != profileID && c.ContractorID != profileID) {
		return nil, ErrNotFound
	}
	return s.decorateContractLocked(*c), nil
}

func (s *MemoryStore) ListContractsForProfile(ctx context.Context, profileID int64) ([]models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Contract
	for _, c := range s.contracts {
		if c.Status == models.ContractStatusTerminated {
			continue
		}
		if c.ClientID == profileID || c.ContractorID == profileID {
			out = append(out, *s.decorateContractLocked(*c))
		}
	}
	sortContractsByID(out)
	return out, nil
}

func (s *MemoryStore) ListUnpaidJobsForProfile(ctx context.Context, profileID int64) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Job
	for _, j := range s.jobs {
		if j.Paid {
			continue
		}
		c, ok := s.contracts[j.ContractID]
		if !ok || c.Status != models.ContractStatusInProgress {
			continue
		}
		if c.ClientID == profileID || c.ContractorID == profileID {
			out = append(out, *j)
		}
	}
	sortJobsByID(out)
	return out, nil
}

func (s *MemoryStore) OutstandingDebt(ctx context.Context, clientID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outstandingDebtLocked(clientID), nil
}

// Atomically stages every write fn issues and applies them all-or-nothing.
// The store lock is not held while fn runs, so two concurrent units racing on
// the same row both reach their commit and exactly one passes the version
// checks.
func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemoryStore) commit(tx *memoryTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Verify every captured version before touching anything.
	for _, w := range tx.balanceWrites {
		p, ok := s.profiles[w.id]
		if !ok || p.Version != w.version {
			return ErrVersionConflict
		}
	}
	for _, w := range tx.jobWrites {
		j, ok := s.jobs[w.id]
		if !ok || j.Version != w.version || j.Paid {
			return ErrVersionConflict
		}
	}

	now := time.Now().UTC()
	for _, w := range tx.balanceWrites {
		p := s.profiles[w.id]
		p.Balance = w.newBalance
		p.Version++
		p.UpdatedAt = now
	}
	for _, w := range tx.jobWrites {
		j := s.jobs[w.id]
		paidAt := w.paidAt
		j.Paid = true
		j.PaymentDate = &paidAt
		j.Version++
		j.UpdatedAt = paidAt
	}
	for _, e := range tx.entries {
		s.entrySeq++
		e.ID = s.entrySeq
		e.CreatedAt = now
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *MemoryStore) profileLocked(id int64) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) jobLocked(id int64) (*models.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	if c, ok := s.contracts[j.ContractID]; ok {
		cc := *c
		cp.Contract = &cc
	}
	return &cp, nil
}

func (s *MemoryStore) outstandingDebtLocked(clientID int64) int64 {
	var debt int64
	for _, j := range s.jobs {
		if j.Paid {
			continue
		}
		if c, ok := s.contracts[j.ContractID]; ok && c.ClientID == clientID {
			debt += j.Price
		}
	}
	return debt
}

func (s *MemoryStore) decorateContractLocked(c models.Contract) *models.Contract {
	if p, ok := s.profiles[c.ClientID]; ok {
		c.ClientName = p.FullName()
	}
	if p, ok := s.profiles[c.ContractorID]; ok {
		c.ContractorName = p.FullName()
	}
	return &c
}

type balanceWrite struct {
	id         int64
	newBalance int64
	version    int64
}

type jobWrite struct {
	id      int64
	paidAt  time.Time
	version int64
}

type memoryTx struct {
	store         *MemoryStore
	balanceWrites []balanceWrite
	jobWrites     []jobWrite
	entries       []models.LedgerEntry
}

func (t *memoryTx) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.profileLocked(id)
}

func (t *memoryTx) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.jobLocked(id)
}

func (t *memoryTx) OutstandingDebt(ctx context.Context, clientID int64) (int64, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.outstandingDebtLocked(clientID), nil
}

func (t *memoryTx) UpdateProfileBalance(ctx context.Context, id, newBalance, version int64) error {
	t.balanceWrites = append(t.balanceWrites, balanceWrite{id: id, newBalance: newBalance, version: version})
	return nil
}

func (t *memoryTx) MarkJobPaid(ctx context.Context, id int64, paidAt time.Time, version int64) error {
	t.jobWrites = append(t.jobWrites, jobWrite{id: id, paidAt: paidAt, version: version})
	return nil
}

func (t *memoryTx) AddLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	t.entries = append(t.entries, *entry)
	return nil
}

func sortContractsByID(cs []models.Contract) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}

func sortJobsByID(js []models.Job) {
	sort.Slice(js, func(i, j int) bool { return js[i].ID < js[j].ID })
}
