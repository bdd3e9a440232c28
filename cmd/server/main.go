package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mdewit/matchbox/assets"
	"github.com/mdewit/matchbox/internal"
	"github.com/mdewit/matchbox/internal/auth"
	authdb "github.com/mdewit/matchbox/internal/auth/db"
	"github.com/mdewit/matchbox/internal/db"
	"github.com/mdewit/matchbox/internal/migrate"
	"github.com/mdewit/matchbox/internal/web"
	"github.com/mdewit/matchbox/internal/web/sessions"
	"github.com/mdewit/matchbox/internal/web/view"
)

func main() {
	// A .env file is a development convenience, production deployments
	// provide real environment variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	database, err := db.OpenSQLite(cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}

	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.db.migrate {
		logger.Info("attempting to migrate database", "dbFile", cfg.db.file)

		migrations, err := migrate.RunFS(ctx, database, assets.MigrationsFS, migrate.Metadata{
			AppVersion: internal.BuildRevision,
			Timestamp:  time.Now(),
		})
		if err != nil {
			logger.Error("failed to migrate database", "error", err)
			return 1
		}

		for _, m := range migrations {
			logger.Info("migration ran", "sequence", m.Sequence, "filename", m.Filename)
		}
	}

	authSvc, err := auth.NewService(authdb.New(database), cfg.auth)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	var views web.ViewRenderer
	if cfg.http.viewDir != "" {
		logger.Info("loading templates from disk", "dir", cfg.http.viewDir)
		views = view.NewFSRenderer(os.DirFS(cfg.http.viewDir))
	} else {
		views, err = view.NewMemRenderer(assets.TemplateFS)
		if err != nil {
			logger.Error("failed to parse templates", "error", err)
			return 1
		}
	}

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:   logger,
			Views:    views,
			Auth:     authSvc,
			Sessions: sessions.NewCookieStore(cfg.http.sessionKey, cfg.http.secureCookie),
			DistFS:   http.FS(assets.DistFS),
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}
