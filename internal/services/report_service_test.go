package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpay/backend/internal/logger"
)

func reportRange(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start, err := time.Parse("2006-01-02", "2026-01-01")
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", "2026-02-01")
	require.NoError(t, err)
	return start, end
}

func TestReportService_BestProfession(t *testing.T) {
	ctx := context.Background()
	start, end := reportRange(t)

	t.Run("uncached query hits the database and fills the cache", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		rdb, redisMock := redismock.NewClientMock()

		svc := NewReportService(db, rdb, logger.NewNop())
		key := "reports:best-profession:1767225600:1769904000"

		redisMock.ExpectGet(key).RedisNil()
		dbMock.ExpectQuery("SELECT p.profession, SUM\\(j.price\\) AS total_earned").
			WithArgs("contractor", "in_progress", start, end).
			WillReturnRows(sqlmock.NewRows([]string{"profession", "total_earned"}).
				AddRow("programmer", 250000))

		cached, err := json.Marshal(ProfessionEarnings{Profession: "programmer", TotalEarned: 250000})
		require.NoError(t, err)
		redisMock.ExpectSet(key, cached, time.Minute).SetVal("OK")

		result, err := svc.BestProfession(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, "programmer", result.Profession)
		assert.Equal(t, int64(250000), result.TotalEarned)

		assert.NoError(t, dbMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		rdb, redisMock := redismock.NewClientMock()

		svc := NewReportService(db, rdb, logger.NewNop())
		key := "reports:best-profession:1767225600:1769904000"

		cached, err := json.Marshal(ProfessionEarnings{Profession: "wizard", TotalEarned: 90000})
		require.NoError(t, err)
		redisMock.ExpectGet(key).SetVal(string(cached))

		result, err := svc.BestProfession(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, "wizard", result.Profession)

		assert.NoError(t, dbMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("empty range reports no data", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewReportService(db, nil, logger.NewNop())

		dbMock.ExpectQuery("SELECT p.profession, SUM\\(j.price\\) AS total_earned").
			WithArgs("contractor", "in_progress", start, end).
			WillReturnRows(sqlmock.NewRows([]string{"profession", "total_earned"}))

		_, err = svc.BestProfession(ctx, start, end)
		assert.ErrorIs(t, err, ErrNoReportData)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestReportService_BestClients(t *testing.T) {
	ctx := context.Background()
	start, end := reportRange(t)

	t.Run("returns top clients without redis", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewReportService(db, nil, logger.NewNop())

		dbMock.ExpectQuery("SELECT p.id, p.first_name \\|\\| ' ' \\|\\| p.last_name AS full_name, SUM\\(j.price\\) AS total_paid").
			WithArgs("in_progress", start, end, 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "total_paid"}).
				AddRow(1, "Harry Potter", 200000).
				AddRow(4, "Ash Ketchum", 120000))

		clients, err := svc.BestClients(ctx, start, end, 0) // defaulted limit
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, "Harry Potter", clients[0].FullName)
		assert.Equal(t, int64(200000), clients[0].TotalPaid)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no paid jobs in range", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewReportService(db, nil, logger.NewNop())

		dbMock.ExpectQuery("SELECT p.id, p.first_name \\|\\| ' ' \\|\\| p.last_name AS full_name, SUM\\(j.price\\) AS total_paid").
			WithArgs("in_progress", start, end, 5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "total_paid"}))

		_, err = svc.BestClients(ctx, start, end, 5)
		assert.ErrorIs(t, err, ErrNoReportData)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
