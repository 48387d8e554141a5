// Package server initializes and runs the application server. It wires the
// object store, the database-backed auth services and the HTTP API, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkarpenko/codepad/internal/logging"
	"github.com/mkarpenko/codepad/internal/server/assistant"
	"github.com/mkarpenko/codepad/internal/server/config"
	"github.com/mkarpenko/codepad/internal/server/files"
	"github.com/mkarpenko/codepad/internal/server/httpapi"
	"github.com/mkarpenko/codepad/internal/server/shared/db"
	"github.com/mkarpenko/codepad/internal/server/storage"
	"github.com/mkarpenko/codepad/internal/server/users"
)

type App struct {
	config           *config.Config
	logger           logging.Logger
	userService      *users.Service
	fileService      *files.Service
	assistantService *assistant.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewDefault(cfg.DevMode)

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	us := users.NewService(rm.Users(), rm.RefreshTokens(), cfg)
	fs := files.NewService(store, logger)
	as := assistant.NewService(cfg.AssistantDelay, logger)

	return &App{
		config:           cfg,
		logger:           logger,
		userService:      us,
		fileService:      fs,
		assistantService: as,
	}, nil
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

	ah := httpapi.NewAuthHandler(app.userService, app.config.GithubClientID, app.config.GithubClientSecret, app.logger)
	fh := httpapi.NewFilesHandler(app.fileService)
	sh := httpapi.NewAssistHandler(app.assistantService)

	router := httpapi.NewRouter(ah, fh, sh, []byte(app.config.SecretKey), app.logger)

	s, err := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// Provision the bucket and its access policies up front so the first
	// editor request does not race the storage setup.
	if _, err := app.fileService.Bootstrap(ctx); err != nil {
		app.logger.Error(ctx, "storage bootstrap failed", "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
