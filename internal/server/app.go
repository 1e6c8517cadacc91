// Package server wires configuration, storage, services and transports
// into a runnable message board.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/msgboard/internal/cryptox"
	"github.com/dmitrijs2005/msgboard/internal/logging"
	"github.com/dmitrijs2005/msgboard/internal/server/config"
	"github.com/dmitrijs2005/msgboard/internal/server/httpapi"
	"github.com/dmitrijs2005/msgboard/internal/server/media"
	"github.com/dmitrijs2005/msgboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/msgboard/internal/server/services"

	gs "github.com/dmitrijs2005/msgboard/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	messageService *services.MessageService
}

var openDB = repomanager.OpenDB

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	key, err := mediaKey(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	codec, err := cryptox.NewCodec(key)
	if err != nil {
		return nil, fmt.Errorf("media codec: %w", err)
	}

	store, err := newMediaStore(ctx, c)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	us, err := services.NewUserService(db, rm, c)
	if err != nil {
		db.Close()
		return nil, err
	}
	ms := services.NewMessageService(db, rm, codec, store, logger.With("module", "messages"))

	return &App{config: c, logger: logger, db: db, userService: us, messageService: ms}, nil
}

// mediaKey decodes the configured key. Without one, a random key is used
// for this process only and media written now is unreadable after a restart.
func mediaKey(ctx context.Context, c *config.Config, logger logging.Logger) ([]byte, error) {
	if c.MediaKey != "" {
		key, err := cryptox.DecodeKey(c.MediaKey)
		if err != nil {
			return nil, fmt.Errorf("media key: %w", err)
		}
		return key, nil
	}

	key, err := cryptox.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate media key: %w", err)
	}
	logger.Warn(ctx, "no media key configured, generated an ephemeral one; stored media will not survive a restart",
		"key_bytes", len(key))
	return key, nil
}

func newMediaStore(ctx context.Context, c *config.Config) (media.Store, error) {
	switch c.MediaStorage {
	case "", config.MediaStorageDB:
		return media.Inline{}, nil
	case config.MediaStorageS3:
		s, err := media.NewS3(ctx, media.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 media store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown media storage %q", c.MediaStorage)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// seed posts the configured welcome message once, the first time its
// author has no messages. The author is resolved without a password check.
func (app *App) seed(ctx context.Context) error {
	if app.config.SeedLogin == "" {
		return nil
	}

	user, err := app.userService.EnsureUser(ctx, app.config.SeedLogin)
	if err != nil {
		return fmt.Errorf("seed login: %w", err)
	}

	existing, err := app.messageService.ListByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("seed list: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	text := app.config.SeedText
	if _, err := app.messageService.Create(ctx, user.ID, &text, nil, nil); err != nil {
		return fmt.Errorf("seed message: %w", err)
	}
	app.logger.Info(ctx, "seed message created", "login_name", user.LoginName)
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.userService, app.messageService, app.logger, httpapi.Options{
		AllowedOrigins: app.config.AllowedOrigins,
		MaxUploadBytes: app.config.MaxUploadBytes,
	})

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.seed(ctx); err != nil {
		app.logger.Warn(ctx, "seeding skipped", "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "close db", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
