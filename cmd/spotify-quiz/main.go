// Command spotify-quiz runs the Spotify Quiz web application.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-spotify-quiz/internal/auth"
	"github.com/justestif/go-spotify-quiz/internal/config"
	"github.com/justestif/go-spotify-quiz/internal/db"
	"github.com/justestif/go-spotify-quiz/internal/logging"
	"github.com/justestif/go-spotify-quiz/internal/quiz"
	"github.com/justestif/go-spotify-quiz/internal/web"
	webfs "github.com/justestif/go-spotify-quiz/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal("application error", "err", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "spotify-quiz",
		Usage: "Guess your top tracks from their audio features",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars("QUIZ_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create the PostgreSQL tables",
				Action: migrate,
			},
			{
				Name:  "history",
				Usage: "Print stored quiz results",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: history,
			},
		},
		Action: serve,
	}
}

// setup loads the configuration and builds the logger.
func setup(cmd *cli.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cmd.Root().ErrWriter, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	templates, err := webfs.Templates()
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := webfs.Static()
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		TemplatesFS:     templates,
		StaticFS:        static,
	}, web.Deps{
		Auth: auth.NewClient(auth.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURL:  cfg.Spotify.RedirectURL,
			AuthURL:      cfg.Spotify.AuthURL,
			TokenURL:     cfg.Spotify.TokenURL,
			Scopes:       cfg.Spotify.Scopes,
		}),
		Sessions:   st.sessions,
		Results:    st.results,
		Logger:     logger,
		APIBaseURL: cfg.Spotify.APIBaseURL,
		APITimeout: cfg.Spotify.RequestTimeout,
		Checks:     st.checks(),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	st.sweep(ctx, cfg.Session.SweepInterval)

	logger.Info("configured",
		"session_backend", cfg.Session.Backend,
		"results_backend", cfg.Results.Backend,
	)
	return server.Run(ctx)
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("%w: postgres.url or DATABASE_URL is required", config.ErrInvalidConfig)
	}

	database, err := db.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	logger.Info("migrations applied")
	return nil
}

func history(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := openResults(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("listing quiz results: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(cmd.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printHistory(cmd.Root().Writer, records)
	return nil
}

func printHistory(w io.Writer, records []quiz.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No quizzes taken yet.")
		return
	}

	correct := 0
	for i, rec := range records {
		if rec.Correct() {
			correct++
		}
		fmt.Fprintf(w, "%3d. %s vs %s: %s\n", i+1, rec.Song1Name, rec.Song2Name, rec.Result)
	}
	fmt.Fprintf(w, "\n%d of %d correct\n", correct, len(records))
}
