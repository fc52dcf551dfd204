package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neu-csye6225/webapp/internal/config"
	"github.com/neu-csye6225/webapp/internal/handler"
	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/pkg/keycodec"
	"github.com/neu-csye6225/webapp/internal/repository"
	"github.com/neu-csye6225/webapp/internal/service"
	"github.com/neu-csye6225/webapp/internal/storage"
	"github.com/neu-csye6225/webapp/internal/ws"
)

type App struct {
	cfg *config.Config
	log zerolog.Logger

	db     *gorm.DB
	redis  *redis.Client
	s3     *storage.S3Store
	hub    *ws.Hub
	server *Server
}

// New connects to every backing service, applies pending migrations and
// assembles the HTTP server.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := repository.NewDB(repository.DBConfig{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN()}, log)
	if err != nil {
		return nil, err
	}
	a.db = db

	applied, err := repository.NewMigrator(db).Migrate(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	log.Info().Int("applied", applied).Msg("database migrations complete")

	codecOpts := []keycodec.Option{keycodec.WithEndpoint(cfg.S3Endpoint)}
	if cfg.LocatorRawFallback {
		codecOpts = append(codecOpts, keycodec.WithRawFallback(log.With().Str("component", "keycodec").Logger()))
	}
	codec, err := keycodec.New(cfg.S3BucketName, codecOpts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to build key codec: %w", err)
	}

	client, err := storage.NewS3Client(ctx, storage.S3Config{
		Bucket:          cfg.S3BucketName,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Timeout:         cfg.S3Timeout,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.s3 = storage.NewS3Store(client, cfg.S3BucketName, codec, cfg.S3Timeout, log)

	if err := a.s3.Ping(ctx); err != nil {
		// uploads will fail until the bucket is reachable; keep serving health checks
		log.Warn().Err(err).Msg("bucket is not reachable")
	}

	var metadata repository.MetadataStore = repository.NewFileMetadataRepository(db, cfg.DBTimeout)
	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.redis = rdb
		metadata = repository.NewCachedMetadataStore(metadata, rdb, cfg.CacheTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("metadata cache enabled")
	}

	prom := metrics.NewPrometheus(nil)
	a.hub = ws.NewHub(ws.NewUpgrader(cfg.WSAllowedOrigins), log)

	files := service.NewFileService(service.FileServiceDeps{
		Objects:     a.s3,
		Metadata:    metadata,
		Codec:       codec,
		Metrics:     prom,
		Events:      a.hub,
		Logger:      log,
		MaxFileSize: cfg.MaxFileSize,
	})
	health := service.NewHealthService(repository.NewHealthCheckRepository(db, cfg.DBTimeout), prom, log)

	a.server = NewServer(prom, prom.Handler(), log,
		handler.NewFileHandler(files, prom, log, cfg.MaxFileSize),
		handler.NewHealthHandler(health, prom, log),
		handler.NewEventsHandler(a.hub, prom, log),
	)

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	return a.server.Run(ctx, a.cfg.ServerPort, a.cfg.ShutdownTimeout)
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, repository.CloseDB(a.db))
	}
	return errors.Join(errs...)
}
