package cmd

import (
	"context"
	"time"

	"mod-builder/core/config"
	"mod-builder/core/database"
	"mod-builder/core/fetch"
	"mod-builder/core/flags"
	"mod-builder/core/storage"
	"mod-builder/feature/generation"
	"mod-builder/feature/history"

	"go.uber.org/zap"
)

// components are the long-lived collaborators shared by the server and the
// one-shot generate command.
type components struct {
	pipeline *generation.Pipeline
	flags    *flags.Cache
	history  *history.Repository
}

// recorder returns the job recorder, or a nil interface when history is off.
func (c *components) recorder() generation.Recorder {
	if c.history == nil {
		return nil
	}
	return c.history
}

// bootstrap wires storage, the optional history database, the fetcher and
// the pipeline from cfg. Optional backends that fail are logged and skipped.
func bootstrap(cfg *config.Config, logg *zap.Logger) (*components, error) {
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if store == nil {
		logg.Info("Object storage not configured; s3 mirrors and publishing disabled")
	}

	var repo *history.Repository
	if cfg.Database.Enabled() {
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			repo = history.NewRepository(db)
			if err := repo.Migrate(); err != nil {
				logg.Warn("Job history migration failed", zap.Error(err))
			}
			if missing, err := repo.CheckSchema(); err != nil {
				logg.Warn("Job history schema check failed", zap.Error(err))
			} else if len(missing) > 0 {
				logg.Warn("Job history table is missing columns", zap.Strings("columns", missing))
			}
			logg.Info("Connected to job history database")
		}
	}

	fetcher := fetch.New(cfg.Fetch, logg.Named("fetch"))
	router := fetch.NewRouter(cfg.Fetch, store)

	var source flags.Source
	if cfg.Flags.URL != "" {
		source = flags.RemoteSource(fetcher, router.Get, cfg.Flags.URL)
	}
	cache := flags.NewCache(source, time.Duration(cfg.Flags.TTLSeconds)*time.Second, logg.Named("flags"))

	tool := generation.NewExecTool(cfg.Tools, cfg.Generation)
	deps := generation.Deps{
		Fetcher:     fetcher,
		Getter:      router,
		Flags:       cache,
		Extractor:   tool,
		Rebuilder:   tool,
		Installer:   generation.FileInstaller{},
		Concurrency: cfg.Fetch.Limit(),
		Logger:      logg.Named("pipeline"),
	}
	if cfg.Generation.Publish {
		if pub := generation.NewStoragePublisher(store, cfg.Storage.Bucket); pub != nil {
			timeout := time.Duration(cfg.Storage.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			if err := pub.CheckBucket(ctx); err != nil {
				logg.Warn("Publishing bucket unavailable; packages will not be published", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
			} else {
				deps.Publisher = pub
			}
			cancel()
		} else {
			logg.Warn("Publishing requested but object storage is not configured")
		}
	}

	return &components{
		pipeline: generation.NewPipeline(cfg.Generation, deps),
		flags:    cache,
		history:  repo,
	}, nil
}
