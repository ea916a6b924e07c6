package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizResultRepository handles quiz result database operations.
// Results are append-only.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

// Insert appends a result and fills in its ID and creation time.
func (r *QuizResultRepository) Insert(ctx context.Context, result *QuizResult) error {
	query := `
		INSERT INTO quiz_results (song1_name, song1_features, song2_name, song2_features, result, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		result.Song1Name,
		result.Song1Features,
		result.Song2Name,
		result.Song2Features,
		result.Result,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting quiz result: %w", err)
	}
	return nil
}

// List returns every result in insertion order.
func (r *QuizResultRepository) List(ctx context.Context) ([]QuizResult, error) {
	query := `
		SELECT id, song1_name, song1_features, song2_name, song2_features, result, created_at
		FROM quiz_results
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying quiz results: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (QuizResult, error) {
		var q QuizResult
		err := row.Scan(
			&q.ID,
			&q.Song1Name,
			&q.Song1Features,
			&q.Song2Name,
			&q.Song2Features,
			&q.Result,
			&q.CreatedAt,
		)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning quiz results: %w", err)
	}
	return results, nil
}

// Count returns the number of stored results.
func (r *QuizResultRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting quiz results: %w", err)
	}
	return n, nil
}
