package app

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"smartgrid/internal/config"
	"smartgrid/internal/db"
	httpserver "smartgrid/internal/http"
	"smartgrid/internal/http/handlers"
	"smartgrid/internal/metrics"
	"smartgrid/internal/password"
	"smartgrid/internal/repository"
	"smartgrid/internal/service"
)

// App wires the service dependency graph and owns the process
// lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *sql.DB
	server *httpserver.Server
}

// New builds the full dependency graph. A missing or unreachable
// database does not fail construction: repositories are handed a nil
// or broken pool and store-backed routes fail per request.
func New(cfg *config.Config, logger *zap.Logger) *App {
	var pool *sql.DB
	if cfg.Database.DSN == "" {
		logger.Warn("DATABASE_URL is not set, starting without a database")
	} else {
		var err error
		pool, err = db.NewPostgres(cfg.Database.DSN)
		if err != nil {
			logger.Warn("database unavailable at startup, continuing degraded", zap.Error(err))
		} else if err := db.Migrate(pool); err != nil {
			logger.Warn("schema migration failed", zap.Error(err))
		} else {
			logger.Info("database connected, schema up to date")
		}
	}

	sessionRepo := repository.NewSessionRepository(pool)
	predictionRepo := repository.NewPredictionRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	hasher := password.NewBcryptHasher(0)

	chargingSvc := service.NewChargingService(sessionRepo, logger)
	predictionSvc := service.NewPredictionService(predictionRepo, logger)
	authSvc := service.NewAuthService(userRepo, hasher, logger)

	development := cfg.Development()
	collector := metrics.NewCollector()

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Charging:    handlers.NewChargingHandler(chargingSvc, logger, development),
		Predictions: handlers.NewPredictionHandler(predictionSvc, logger, development),
		Auth:        handlers.NewAuthHandler(authSvc, logger, development),
		Status:      handlers.NewStatusHandler(pool, cfg.Environment),
		Metrics:     collector.Handler(),
		Middleware: []func(next http.Handler) http.Handler{
			httpserver.NewCORSMiddleware(cfg.CORS.AllowedOrigin),
			httpserver.NewLoggingMiddleware(logger),
			httpserver.NewRecoveryMiddleware(logger),
			httpserver.NewMetricsMiddleware(collector),
		},
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		server: httpserver.NewServer(cfg.HTTPAddress(), router, logger),
	}
}

// Run serves HTTP until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases held resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("closing database pool", zap.Error(err))
		}
	}
}
