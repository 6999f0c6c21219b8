// Package server initializes and runs the rabbits API: it opens the
// database, applies migrations, wires services to the HTTP transport and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/auth"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/config"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/repomanager"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/rest"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/telemetry"
)

// Version is reported to the tracing backend. Overridden at build time.
var Version = "dev"

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	server         *rest.Server
	shutdownTracer telemetry.ShutdownFunc
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch strings.ToLower(c.BlobBackend) {
	case config.BlobBackendLocal:
		return blobstore.NewLocalStore(c.BlobLocalPath)
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:    c.S3Region,
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Bucket:    c.S3Bucket,
			Endpoint:  c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{
		Backend: c.LogBackend,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Output:  os.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, c.OTLPEndpoint, Version)
	if err != nil {
		return nil, fmt.Errorf("tracer init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	svc := rest.Services{
		Users:   services.NewUserService(db, rm, hasher, codec, blobs, logger),
		Rabbits: services.NewRabbitService(db, rm, blobs, logger),
		Photos:  services.NewPhotoService(db, rm),
		Images:  services.NewImageService(db, rm, blobs, c.ImageURLTTL, logger),
	}

	srv := rest.NewServer(rest.Options{
		Address:         c.HTTPAddr,
		CORSOrigins:     c.CORSAllowedOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, svc, auth.NewIdentityResolver(codec, rm.Users(db)), db)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		repomanager:    rm,
		server:         srv,
		shutdownTracer: shutdownTracer,
	}, nil
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

// Run applies migrations and serves HTTP until a termination signal arrives
// or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	defer app.close()

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := app.shutdownTracer(ctx); err != nil {
		app.logger.Warn(ctx, "tracer shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}
