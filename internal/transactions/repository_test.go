package transactions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpilot/gigpilot/internal/transactions"
)

func TestInMemoryRepository_HistoryEmptyForUnknownUser(t *testing.T) {
	repo := transactions.NewInMemoryRepository()

	recs, err := repo.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestInMemoryRepository_AddAndHistory(t *testing.T) {
	repo := transactions.NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Add(ctx, "u1", transactions.Record{Income: 600, HoursWorked: 4, LoggedAt: base}))
	require.NoError(t, repo.Add(ctx, "u1", transactions.Record{Income: 900, HoursWorked: 5, LoggedAt: base.Add(24 * time.Hour)}))
	require.NoError(t, repo.Add(ctx, "u2", transactions.Record{Income: 100, HoursWorked: 1, LoggedAt: base}))

	recs, err := repo.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 900.0, recs[0].Income, "most recent first")
	assert.Equal(t, 600.0, recs[1].Income)
}

func TestInMemoryRepository_HistoryIsACopy(t *testing.T) {
	repo := transactions.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, "u1", transactions.Record{Income: 500, HoursWorked: 5}))

	recs, _ := repo.History(ctx, "u1")
	recs[0].Income = 0

	again, _ := repo.History(ctx, "u1")
	assert.Equal(t, 500.0, again[0].Income)
}

func TestInMemoryRepository_AddDefaultsTimestamp(t *testing.T) {
	repo := transactions.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, "u1", transactions.Record{Income: 10, HoursWorked: 1}))

	recs, _ := repo.History(ctx, "u1")
	assert.False(t, recs[0].LoggedAt.IsZero())
}

func TestInMemoryRepository_AddRejectsInvalid(t *testing.T) {
	repo := transactions.NewInMemoryRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Add(ctx, "", transactions.Record{Income: 1, HoursWorked: 1}), transactions.ErrMissingUserID)
	assert.ErrorIs(t, repo.Add(ctx, "u1", transactions.Record{Income: -1, HoursWorked: 1}), transactions.ErrInvalidRecord)
	assert.ErrorIs(t, repo.Add(ctx, "u1", transactions.Record{Income: 1, HoursWorked: -2}), transactions.ErrInvalidRecord)
}
