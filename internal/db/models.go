package db

import "time"

// Session represents a browser session and the OAuth token it holds.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time // nullable, nil until the user has logged in
	Quiz         []byte     // jsonb, nil when no quiz is waiting to be graded
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// QuizResult represents one graded quiz attempt.
type QuizResult struct {
	ID            int64
	Song1Name     string
	Song1Features []byte // jsonb
	Song2Name     string
	Song2Features []byte // jsonb
	Result        string
	CreatedAt     time.Time
}
