package quiz

import "github.com/justestif/go-spotify-quiz/internal/spotify"

// Record is one persisted quiz attempt. Records are append-only.
type Record struct {
	Song1Name     string                `json:"song1_name" bson:"song1_name"`
	Song1Features spotify.AudioFeatures `json:"song1_features" bson:"song1_features"`
	Song2Name     string                `json:"song2_name" bson:"song2_name"`
	Song2Features spotify.AudioFeatures `json:"song2_features" bson:"song2_features"`
	Result        string                `json:"result" bson:"result"`
}

// NewRecord builds the record of a graded quiz.
func NewRecord(q *Quiz, result string) Record {
	return Record{
		Song1Name:     q.Song1.Name,
		Song1Features: q.Features1,
		Song2Name:     q.Song2.Name,
		Song2Features: q.Features2,
		Result:        result,
	}
}

// Correct reports whether the attempt was answered correctly.
func (r Record) Correct() bool {
	return r.Result == ResultCorrect
}
