package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/linkshelf/internal/api/handlers"
	"github.com/cloo-solutions/linkshelf/internal/config"
	"github.com/cloo-solutions/linkshelf/internal/database"
	"github.com/cloo-solutions/linkshelf/internal/fetch"
	"github.com/cloo-solutions/linkshelf/internal/jobs"
	"github.com/cloo-solutions/linkshelf/internal/lock"
	"github.com/cloo-solutions/linkshelf/internal/logging"
	"github.com/cloo-solutions/linkshelf/internal/openai"
	"github.com/cloo-solutions/linkshelf/internal/repository"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/cloo-solutions/linkshelf/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

// runtime holds what every admin command needs
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.Debug)

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, pool: pool}, nil
}

func (rt *runtime) Close() {
	rt.pool.Close()
}

// newSnapshotStore returns nil when S3 is not configured
func newSnapshotStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.SnapshotStore, error) {
	if !cfg.HasS3() {
		logger.Info().Msg("snapshot archive disabled: S3 not configured")
		return nil, nil
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}

	logger.Info().Str("bucket", cfg.S3Bucket).Msg("snapshot archive ready")
	return s3Client, nil
}

func newAIClient(cfg *config.Config) *openai.Client {
	if !cfg.HasOpenAI() {
		return nil
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.OpenAIModel,
		EmbeddingModel: goopenai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		Timeout:        cfg.AITimeout,
	})
}

// components is the wired application served by `serve`
type components struct {
	saveHandler *handlers.SaveHandler
	itemHandler *handlers.ItemHandler
	worker      *jobs.Worker
	closers     []func() error
}

func (c *components) Close() {
	for _, closeFn := range c.closers {
		_ = closeFn()
	}
}

func newComponents(ctx context.Context, rt *runtime) (*components, error) {
	cfg, logger := rt.cfg, rt.logger
	c := &components{}

	itemRepo := repository.NewItemRepository(rt.pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(rt.pool)
	txRunner := repository.NewTxRunner(rt.pool)

	snapshots, err := newSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	aiClient := newAIClient(cfg)
	var completer service.Completer
	if aiClient != nil {
		completer = aiClient
	} else {
		logger.Warn().Msg("OpenAI not configured: items are saved with fallback metadata")
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:  cfg.FetchTimeout,
		MaxBytes: cfg.FetchMaxBytes,
	}, logger)
	extractor := service.NewExtractor(fetcher, completer, cfg.SummaryLanguage, logger)

	opts := []service.IngestOption{}
	if snapshots != nil {
		opts = append(opts, service.WithSnapshotStore(snapshots))
	}
	if cfg.HasRedis() {
		locker, err := lock.NewRedisLocker(ctx, lock.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SaveLockTTL,
		}, logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, locker.Close)
		opts = append(opts, service.WithSaveLocker(locker))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("save lock enabled")
	} else {
		opts = append(opts, service.WithSaveLocker(lock.NoopLocker{}))
	}

	ingestSvc := service.NewIngestService(itemRepo, txRunner, extractor, logger, opts...)
	itemSvc := service.NewItemService(itemRepo, snapshots)

	if aiClient != nil {
		embeddingSvc := service.NewEmbeddingService(aiClient, itemRepo)
		processor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc, logger)
		c.worker = jobs.NewWorker(processor, cfg.EmbeddingPollInterval, logger)
	}

	c.saveHandler = handlers.NewSaveHandler(ingestSvc)
	c.itemHandler = handlers.NewItemHandler(itemSvc)
	return c, nil
}
