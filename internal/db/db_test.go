package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testDB connects to QUIZ_TEST_DATABASE_URL, skipping when it is unset.
func testDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("QUIZ_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("QUIZ_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(ctx, url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(database.Close)

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Second run must be a no-op.
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
	return database
}

func TestSessionRepository(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	repo := database.Sessions()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, session.ID) })

	got, err := repo.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TokenExpiry != nil || got.Quiz != nil {
		t.Errorf("new session has token expiry %v and quiz %s, want both nil", got.TokenExpiry, got.Quiz)
	}

	expiry := now.Add(30 * time.Minute)
	session.AccessToken = "access"
	session.RefreshToken = "refresh"
	session.TokenExpiry = &expiry
	session.Quiz = []byte(`{"correct_answer":"a"}`)
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err = repo.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Errorf("tokens = %q/%q, want access/refresh", got.AccessToken, got.RefreshToken)
	}
	if got.TokenExpiry == nil || !got.TokenExpiry.Equal(expiry) {
		t.Errorf("TokenExpiry = %v, want %v", got.TokenExpiry, expiry)
	}
	if len(got.Quiz) == 0 {
		t.Error("Quiz was not stored")
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, session); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() after delete error = %v, want ErrNotFound", err)
	}
}

func TestQuizResultRepositoryKeepsInsertionOrder(t *testing.T) {
	database := testDB(t)
	ctx := context.Background()
	repo := database.QuizResults()

	before, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	marker := uuid.NewString()
	for _, result := range []string{"Correct!", "Incorrect!"} {
		r := &QuizResult{
			Song1Name:     marker,
			Song1Features: []byte(`{"id":"a"}`),
			Song2Name:     "other",
			Song2Features: []byte(`{"id":"b"}`),
			Result:        result,
		}
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if r.ID == 0 {
			t.Error("Insert() did not set ID")
		}
	}

	after, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if after != before+2 {
		t.Errorf("Count() = %d, want %d", after, before+2)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ours []string
	for _, r := range all {
		if r.Song1Name == marker {
			ours = append(ours, r.Result)
		}
	}
	if len(ours) != 2 || ours[0] != "Correct!" || ours[1] != "Incorrect!" {
		t.Errorf("results = %v, want [Correct! Incorrect!]", ours)
	}
}
