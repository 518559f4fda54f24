// Package app assembles repositories, providers and services from configuration.
// Both the API server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/repository"
	"github.com/johnquangdev/meeting-thoughts/internal/adapter/repository/memstore"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
	"github.com/johnquangdev/meeting-thoughts/internal/domain/repositories"
	"github.com/johnquangdev/meeting-thoughts/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-thoughts/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-thoughts/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/chunking"
	meetingUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-thoughts/internal/usecase/similarity"
	thoughtUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/thought"
	pkgai "github.com/johnquangdev/meeting-thoughts/pkg/ai"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

const redisKeyPrefix = "meeting-thoughts:"

// App holds the wired dependency graph
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Meetings repositories.MeetingRepository
	Thoughts repositories.ThoughtRepository
	Tags     repositories.TagRepository
	Jobs     repositories.JobRepository

	// Storage is nil when object storage is disabled
	Storage *storage.MinIOClient

	Pipeline       pipeline.Service
	MeetingService meetingUsecase.Service
	ThoughtService thoughtUsecase.Service

	closers []func() error
}

// Option overrides a dependency before services are built
type Option func(*options)

type options struct {
	extractor pipeline.ThoughtExtractor
}

// WithExtractor replaces the configured LLM extractor
func WithExtractor(e pipeline.ThoughtExtractor) Option {
	return func(o *options) { o.extractor = e }
}

// New builds every dependency named by cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	if err := a.initRepositories(); err != nil {
		return nil, err
	}

	if cfg.Storage.Enabled {
		logger.Info("📦 Connecting to object storage...", zap.String("endpoint", cfg.Storage.Endpoint))
		client, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to init object storage: %w", err)
		}
		a.Storage = client
	}

	extractor := o.extractor
	if extractor == nil {
		var err error
		if extractor, err = newExtractor(cfg, logger); err != nil {
			return nil, err
		}
	}

	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		return nil, err
	}

	engine := similarity.NewEngine(cfg.Similarity.Threshold, cfg.Similarity.TopK)

	a.Pipeline, err = pipeline.NewService(
		a.Meetings, a.Thoughts, a.Tags, a.Jobs,
		extractor, embedder, engine,
		PipelineConfig(cfg), logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init pipeline: %w", err)
	}

	var transcripts meetingUsecase.TranscriptStore
	if a.Storage != nil {
		transcripts = a.Storage
	}
	a.MeetingService = meetingUsecase.NewMeetingService(a.Meetings, a.Thoughts, a.Tags, transcripts, logger)
	a.ThoughtService = thoughtUsecase.NewThoughtService(a.Meetings, a.Thoughts, a.Tags, engine, logger)

	if cfg.Tags.SeedFile != "" {
		seeds, err := config.LoadTagSeeds(cfg.Tags.SeedFile)
		if err != nil {
			return nil, err
		}
		n, err := a.SeedTags(ctx, seeds)
		if err != nil {
			return nil, err
		}
		logger.Info("🏷️ Tag vocabulary seeded", zap.Int("tags", n), zap.String("file", cfg.Tags.SeedFile))
	}

	ok = true
	return a, nil
}

func (a *App) initRepositories() error {
	switch a.Config.Database.Driver {
	case config.DriverMemory:
		a.Logger.Warn("⚠️ Using in-memory store; data is lost on exit")
		store := memstore.New()
		a.Meetings = store.Meetings()
		a.Thoughts = store.Thoughts()
		a.Tags = store.Tags()
		a.Jobs = store.Jobs()
		return nil

	case config.DriverPostgres:
		db, err := database.NewPostgresDB(a.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() error { return database.CloseDB(db) })

		if a.Config.Database.AutoMigrate {
			if a.Config.IsProduction() {
				return fmt.Errorf("DB_AUTO_MIGRATE is enabled in production; run migrations with thoughtctl migrate")
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		a.usePostgres(db)
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", a.Config.Database.Driver)
	}
}

func (a *App) usePostgres(db *gorm.DB) {
	a.Meetings = repository.NewMeetingRepository(db)
	a.Thoughts = repository.NewThoughtRepository(db)
	a.Tags = repository.NewTagRepository(db)
	a.Jobs = repository.NewJobRepository(db)
}

func newExtractor(cfg *config.Config, logger *zap.Logger) (pipeline.ThoughtExtractor, error) {
	switch cfg.Extractor.Provider {
	case config.ProviderGroq:
		return pkgai.NewGroqClient(&cfg.Extractor, logger), nil
	case config.ProviderAnthropic:
		return pkgai.NewAnthropicExtractor(&cfg.Extractor, logger), nil
	default:
		return nil, fmt.Errorf("unsupported extractor provider %q", cfg.Extractor.Provider)
	}
}

// newEmbedder returns nil when embeddings are disabled. Vectors are cached
// in Redis when it is enabled and in process memory otherwise.
func (a *App) newEmbedder(ctx context.Context) (pipeline.EmbeddingProvider, error) {
	cfg := a.Config
	if !cfg.Embedding.Enabled {
		a.Logger.Info("ℹ️ Embeddings disabled; similarity is lexical only")
		return nil, nil
	}

	client := pkgai.NewEmbeddingClient(&cfg.Embedding)

	var store cache.Store
	if cfg.Redis.Enabled {
		a.Logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.GetRedisAddr()))
		rdb, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = cache.NewRedisStore(rdb, redisKeyPrefix)
	} else {
		store = cache.NewMemoryStore()
	}
	a.closers = append(a.closers, store.Close)

	return cache.NewCachingEmbedder(client, store, client.Model(), cfg.Embedding.CacheTTL, a.Logger), nil
}

// PipelineConfig maps configuration onto pipeline tuning
func PipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		ProcessChunking: chunking.Options{
			Policy:  chunking.PolicyBoundary,
			MaxSize: cfg.Chunking.MaxSize,
			Overlap: cfg.Chunking.Overlap,
		},
		ReprocessChunking: chunking.Options{
			Policy:  chunking.PolicySentence,
			MaxSize: cfg.Chunking.SentenceBucketSize,
		},
		EmbeddingBatchSize: cfg.Embedding.BatchSize,
		RunTimeout:         cfg.Pipeline.RunTimeout,
	}
}

// SeedTags upserts the vocabulary by normalized name and returns how many entries were written.
// Existing tags keep their IDs and counts.
func (a *App) SeedTags(ctx context.Context, seeds []config.TagSeed) (int, error) {
	for i, s := range seeds {
		if err := a.Tags.Upsert(ctx, entities.NewTag(s.Name, s.DisplayName)); err != nil {
			return i, fmt.Errorf("failed to seed tag %q: %w", s.Name, err)
		}
	}
	return len(seeds), nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Logger != nil {
			a.Logger.Warn("⚠️ Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
