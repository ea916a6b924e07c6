package spotify

// ArtistSummary is the top-artists view of an artist.
type ArtistSummary struct {
	Name     string
	ImageURL *string // First image, nil when the artist has none
}

// Track identifies a quiz candidate.
type Track struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Artist string `json:"artist" bson:"artist"` // Comma-separated artist names
}

// AudioFeatures holds the audio analysis attributes of one track.
type AudioFeatures struct {
	ID               string  `json:"id" bson:"id"`
	Acousticness     float32 `json:"acousticness" bson:"acousticness"`
	Danceability     float32 `json:"danceability" bson:"danceability"`
	Energy           float32 `json:"energy" bson:"energy"`
	Instrumentalness float32 `json:"instrumentalness" bson:"instrumentalness"`
	Liveness         float32 `json:"liveness" bson:"liveness"`
	Loudness         float32 `json:"loudness" bson:"loudness"`
	Speechiness      float32 `json:"speechiness" bson:"speechiness"`
	Tempo            float32 `json:"tempo" bson:"tempo"`
	Valence          float32 `json:"valence" bson:"valence"`
}

// TrackInfo is the random-song view of a playlist track.
type TrackInfo struct {
	Name        string
	Artists     []string
	Album       string
	ImageURL    *string
	ExternalURL string
}
