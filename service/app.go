package service

import (
	"context"
	"net/http"

	"postviewer/app/config"
	"postviewer/app/controllers"
	"postviewer/app/repositories"
	"postviewer/app/routes"
	"postviewer/app/services"

	"go.uber.org/zap"
)

// NewViewer wires the viewer: remote client, fetch boundary, per-session
// pages and the event routes.
func NewViewer(cfg *config.Config, logger *zap.Logger) (http.Handler, *services.SessionStore) {
	client := repositories.NewRemoteClient(cfg.BaseURL, cfg.HTTPTimeout)
	fetcher := services.NewFetcher(client, logger.Named("fetch"))
	opts := services.PageOptions{
		FetchConcurrency: cfg.FetchConcurrency,
		FallbackUserID:   cfg.FallbackUserID,
	}

	sessions := services.NewSessionStore(cfg.MaxSessions, func() (*services.Page, error) {
		return services.NewPage(fetcher, logger.Named("page"), opts)
	}, logger.Named("sessions"))

	pc := controllers.NewPageController(sessions, logger)
	return routes.SetupViewerRoutes(pc, logger.Named("http")), sessions
}

// RunViewer serves the viewer until ctx is done.
func RunViewer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	handler, _ := NewViewer(cfg, logger)
	logger.Info("starting viewer",
		zap.String("listen", cfg.Listen),
		zap.String("base_url", cfg.BaseURL))
	return Serve(ctx, cfg.Listen, handler, logger)
}

// NewFixtureHandler serves store as a JSONPlaceholder-compatible API.
func NewFixtureHandler(store *repositories.BadgerStore, logger *zap.Logger) http.Handler {
	fc := controllers.NewFixtureController(store, logger)
	return routes.SetupFixtureRoutes(fc, logger.Named("http"))
}

// RunFixtures serves the fixture database until ctx is done.
func RunFixtures(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := openDB(cfg.Fixtures.DBPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store := repositories.NewBadgerStore(db)
	users, posts, comments, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	logger.Info("starting fixture API",
		zap.String("listen", cfg.Fixtures.Listen),
		zap.String("db_path", cfg.Fixtures.DBPath),
		zap.Int("users", users),
		zap.Int("posts", posts),
		zap.Int("comments", comments))
	return Serve(ctx, cfg.Fixtures.Listen, NewFixtureHandler(store, logger), logger)
}
