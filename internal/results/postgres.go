package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/justestif/go-spotify-quiz/internal/db"
	"github.com/justestif/go-spotify-quiz/internal/quiz"
)

// PostgresStore keeps records in the quiz_results table.
type PostgresStore struct {
	database *db.DB
}

// NewPostgresStore creates a store on an open database. The caller owns database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{database: database}
}

// Insert appends rec. Audio features are stored as jsonb.
func (s *PostgresStore) Insert(ctx context.Context, rec quiz.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	return s.database.QuizResults().Insert(ctx, row)
}

// All returns every record in insertion order.
func (s *PostgresStore) All(ctx context.Context) ([]quiz.Record, error) {
	rows, err := s.database.QuizResults().List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]quiz.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close is a no-op; the database is closed by its owner.
func (s *PostgresStore) Close(context.Context) error { return nil }

func toRow(rec quiz.Record) (*db.QuizResult, error) {
	f1, err := json.Marshal(rec.Song1Features)
	if err != nil {
		return nil, fmt.Errorf("encoding song1 features: %w", err)
	}
	f2, err := json.Marshal(rec.Song2Features)
	if err != nil {
		return nil, fmt.Errorf("encoding song2 features: %w", err)
	}
	return &db.QuizResult{
		Song1Name:     rec.Song1Name,
		Song1Features: f1,
		Song2Name:     rec.Song2Name,
		Song2Features: f2,
		Result:        rec.Result,
	}, nil
}

func fromRow(row db.QuizResult) (quiz.Record, error) {
	rec := quiz.Record{
		Song1Name: row.Song1Name,
		Song2Name: row.Song2Name,
		Result:    row.Result,
	}
	if err := json.Unmarshal(row.Song1Features, &rec.Song1Features); err != nil {
		return quiz.Record{}, fmt.Errorf("decoding song1 features of result %d: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Song2Features, &rec.Song2Features); err != nil {
		return quiz.Record{}, fmt.Errorf("decoding song2 features of result %d: %w", row.ID, err)
	}
	return rec, nil
}
