// Package server initializes and runs the EmoTune server: it loads
// configuration, opens the database pool, applies migrations, wires the
// services, and starts the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/emotune/emotune/internal/logging"
	"github.com/emotune/emotune/internal/server/config"
	"github.com/emotune/emotune/internal/server/httpapi"
	"github.com/emotune/emotune/internal/server/repositories/repomanager"
	"github.com/emotune/emotune/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	emotionService *services.EmotionService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm := repomanager.NewPostgresRepositoryManager()

	// An empty DSN is a supported mode: the engine keeps working, reads
	// degrade to empty results and record writes fail.
	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database DSN configured, persistence disabled")
	}

	us := services.NewUserService(db, rm, cfg, logger)
	es := services.NewEmotionService(db, rm, logger)

	return &App{config: cfg, logger: logger, db: db, userService: us, emotionService: es}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.logger, app.userService, app.emotionService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "error closing db", "error", err)
		}
	}
}
