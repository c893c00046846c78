package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gigpay/backend/internal/logger"
	"github.com/gigpay/backend/internal/models"
)

var ErrNoReportData = errors.New("no paid jobs in the requested range")

// DefaultBestClientsLimit matches the original API default.
const DefaultBestClientsLimit = 2

// ReportService answers the revenue aggregation queries. Reads only, no
// concurrency contract. Results are cached in Redis for a short TTL; a nil
// Redis client disables caching.
type ReportService struct {
	db       *sql.DB
	redis    *redis.Client
	log      *logger.Logger
	cacheTTL time.Duration
}

func NewReportService(db *sql.DB, rdb *redis.Client, log *logger.Logger) *ReportService {
	return &ReportService{db: db, redis: rdb, log: log, cacheTTL: time.Minute}
}

// ProfessionEarnings is the best-profession row: total earned by contractors
// of one profession over paid jobs in the range.
type ProfessionEarnings struct {
	Profession  string `json:"profession"`
	TotalEarned int64  `json:"totalEarned"`
}

// ClientSpend is one best-clients row.
type ClientSpend struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	TotalPaid int64  `json:"totalPaid"`
}

// BestProfession returns the profession that earned the most from jobs paid
// within [start, end].
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*ProfessionEarnings, error) {
	cacheKey := fmt.Sprintf("reports:best-profession:%d:%d", start.Unix(), end.Unix())
	var cached ProfessionEarnings
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT p.profession, SUM(j.price) AS total_earned
		FROM profiles p
		JOIN contracts c ON c.contractor_id = p.id
		JOIN jobs j ON j.contract_id = c.id
		WHERE p.kind = $1
		  AND c.status = $2
		  AND j.paid
		  AND j.payment_date BETWEEN $3 AND $4
		GROUP BY p.profession
		ORDER BY total_earned DESC
		LIMIT 1`,
		models.ProfileKindContractor, models.ContractStatusInProgress, start, end)

	var result ProfessionEarnings
	err := row.Scan(&result.Profession, &result.TotalEarned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoReportData
	}
	if err != nil {
		return nil, fmt.Errorf("best profession query: %w", err)
	}

	s.cacheSet(ctx, cacheKey, result)
	return &result, nil
}

// BestClients returns the clients who paid the most for jobs within
// [start, end], at most limit rows.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]ClientSpend, error) {
	if limit <= 0 {
		limit = DefaultBestClientsLimit
	}
	cacheKey := fmt.Sprintf("reports:best-clients:%d:%d:%d", start.Unix(), end.Unix(), limit)
	var cached []ClientSpend
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.first_name || ' ' || p.last_name AS full_name, SUM(j.price) AS total_paid
		FROM profiles p
		JOIN contracts c ON c.client_id = p.id
		JOIN jobs j ON j.contract_id = c.id
		WHERE c.status = $1
		  AND j.paid
		  AND j.payment_date BETWEEN $2 AND $3
		GROUP BY p.id, full_name
		ORDER BY total_paid DESC
		LIMIT $4`,
		models.ContractStatusInProgress, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("best clients query: %w", err)
	}
	defer rows.Close()

	var clients []ClientSpend
	for rows.Next() {
		var c ClientSpend
		if err := rows.Scan(&c.ID, &c.FullName, &c.TotalPaid); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, ErrNoReportData
	}

	s.cacheSet(ctx, cacheKey, clients)
	return clients, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("report cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warn("report cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("report cache write failed", "key", key, "error", err)
	}
}
