package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/justestif/go-spotify-quiz/internal/quiz"
	"github.com/justestif/go-spotify-quiz/internal/spotify"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses every page together with the layouts and partials.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	common := append(layouts, partials...)

	for _, page := range pages {
		name := filepath.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, common...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"moodColor": moodColor,

		// percent renders a 0..1 attribute as a whole percentage.
		"percent": func(v float32) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// moodColor tints a track by its audio features: energy picks the hue from
// indigo to orange, valence brightens it. Features are in [0, 1].
func moodColor(energy, valence float32) template.CSS {
	hue := 264 - energy*229
	sat := 60 + valence*40
	light := 40 + valence*20
	return template.CSS(fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", hue, sat, light))
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title         string
	CurrentPath   string
	Authenticated bool
}

// TopArtistsPageData contains data for the top artists page.
type TopArtistsPageData struct {
	PageData
	DisplayName string
	Artists     []spotify.ArtistSummary
}

// QuizPageData contains data for the quiz page.
type QuizPageData struct {
	PageData
	Quiz *quiz.Quiz
}

// QuizResultPageData contains data for the graded quiz page.
type QuizResultPageData struct {
	PageData
	Result string
	Record quiz.Record
}

// RandomSongPageData contains data for the random song page.
type RandomSongPageData struct {
	PageData
	Track spotify.TrackInfo
}

// HistoryPageData contains data for the quiz history page.
type HistoryPageData struct {
	PageData
	Records []quiz.Record
	Correct int
}
