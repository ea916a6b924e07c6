package web

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/justestif/go-spotify-quiz/internal/quiz"
	"github.com/justestif/go-spotify-quiz/internal/spotify"
)

func mustTemplates(t *testing.T) *Templates {
	t.Helper()
	tmpl, err := NewTemplates(testTemplatesFS(t))
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}
	return tmpl
}

func TestNewTemplatesRequiresPages(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}
	if _, err := NewTemplates(fsys); err == nil {
		t.Error("NewTemplates() error = nil, want error for missing pages")
	}
}

func TestRenderPages(t *testing.T) {
	tmpl := mustTemplates(t)
	image := "https://img/cover.jpg"
	q := sampleQuiz()

	tests := []struct {
		page string
		data any
		want []string
	}{
		{
			page: "home",
			data: PageData{Title: "Spotify Quiz"},
			want: []string{"<title>Spotify Quiz</title>", `href="/login"`},
		},
		{
			page: "top_artists",
			data: TopArtistsPageData{
				PageData:    PageData{Title: "Top", Authenticated: true, CurrentPath: "/top_artists"},
				DisplayName: "Ada",
				Artists: []spotify.ArtistSummary{
					{Name: "Bjork", ImageURL: &image},
					{Name: "Radiohead"},
				},
			},
			want: []string{"Hi Ada", "Bjork", "Radiohead", image, `action="/logout"`, `class="active"`},
		},
		{
			page: "quiz",
			data: QuizPageData{PageData: PageData{Authenticated: true}, Quiz: q},
			want: []string{`value="t1"`, `value="t2"`, "Hyperballad", "Glory Box", "70%", "border-color: hsl("},
		},
		{
			page: "quiz_result",
			data: QuizResultPageData{Result: quiz.ResultCorrect, Record: quiz.NewRecord(q, quiz.ResultCorrect)},
			want: []string{"Correct!", "Hyperballad", "Glory Box"},
		},
		{
			page: "random_song",
			data: RandomSongPageData{Track: spotify.TrackInfo{
				Name:        "Roads",
				Artists:     []string{"Portishead", "Beth Gibbons"},
				Album:       "Dummy",
				ImageURL:    &image,
				ExternalURL: "https://open.spotify.com/track/roads",
			}},
			want: []string{"Roads", "Portishead, Beth Gibbons", "Dummy", image, "Open in Spotify"},
		},
		{
			page: "history",
			data: HistoryPageData{},
			want: []string{"No quizzes taken yet."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tmpl.Render(&buf, tt.page, tt.data); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestRenderQuizResult(t *testing.T) {
	tmpl := mustTemplates(t)
	q := sampleQuiz()

	tests := []struct {
		result    string
		wantClass string
	}{
		{quiz.ResultCorrect, `class="correct"`},
		{quiz.ResultIncorrect, `class="incorrect"`},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			var buf bytes.Buffer
			err := tmpl.Render(&buf, "quiz_result", QuizResultPageData{
				Result: tt.result,
				Record: quiz.NewRecord(q, tt.result),
			})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			heading := tt.wantClass + ">" + tt.result + "</h1>"
			if !strings.Contains(buf.String(), heading) {
				t.Errorf("output missing %q", heading)
			}
		})
	}
}

func TestRenderTrackWithoutExtras(t *testing.T) {
	tmpl := mustTemplates(t)

	var buf bytes.Buffer
	err := tmpl.Render(&buf, "random_song", RandomSongPageData{Track: spotify.TrackInfo{
		Name:  "Unknown Track",
		Album: "Unknown Album",
	}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(buf.String(), "<img") {
		t.Error("rendered an image without an image URL")
	}
	if strings.Contains(buf.String(), "Open in Spotify") {
		t.Error("rendered a link without an external URL")
	}
}

func TestMoodColor(t *testing.T) {
	tests := []struct {
		energy, valence float32
		want            template.CSS
	}{
		{0, 0, "hsl(264, 60%, 40%)"},
		{1, 1, "hsl(35, 100%, 60%)"},
		{0.25, 0.5, "hsl(207, 80%, 50%)"},
	}

	for _, tt := range tests {
		if got := moodColor(tt.energy, tt.valence); got != tt.want {
			t.Errorf("moodColor(%v, %v) = %q, want %q", tt.energy, tt.valence, got, tt.want)
		}
	}
}
