package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository over the
// work_logs table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL work log repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// History retrieves all work logs for a user, most recent first.
func (r *PostgresRepository) History(ctx context.Context, userID string) ([]Record, error) {
	query := `
		SELECT income, hours_worked, logged_at
		FROM work_logs
		WHERE user_id = $1
		ORDER BY logged_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query work logs: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Income, &rec.HoursWorked, &rec.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work logs: %w", err)
	}

	return recs, nil
}

// Add inserts a work log.
func (r *PostgresRepository) Add(ctx context.Context, userID string, rec Record) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO work_logs (user_id, income, hours_worked, logged_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, userID, rec.Income, rec.HoursWorked, rec.LoggedAt); err != nil {
		return fmt.Errorf("insert work log: %w", err)
	}
	return nil
}
