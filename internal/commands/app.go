package commands

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/storage/postgres"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/migrations"
	"github.com/spendlens/spendlens/internal/tags"
	tagstore "github.com/spendlens/spendlens/internal/tags/storage"
)

// app holds the wired components shared by the long-running commands.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	store    storage.TransactionStore
	registry *tags.Registry
	tagger   *tagging.Tagger
	loc      *time.Location
	close    func()
}

// loadConfig reads the configuration and installs the configured logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(config.NewLogger(cfg.Log, os.Stdout))
	slog.Info("Loaded config", "server", cfg.Server.Addr(), "tags_source", cfg.Tags.SourceType, "database", cfg.Database.Enabled())
	return cfg, nil
}

// newApp wires storage, the tag registry and the tagger from cfg.
// Without a database DSN transactions live in memory for the life of the process.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, close: func() {}}

	if cfg.Database.Enabled() {
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
			db.Close()
			return nil, fmt.Errorf("running database migrations: %w", err)
		}
		adapter, err := postgres.NewAdapterWithDB(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.store = adapter
		a.close = func() {
			if err := adapter.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}
	} else {
		slog.Warn("No database.dsn configured, transactions are kept in memory")
		a.store = storage.NewMemoryStore()
	}

	repo, err := newTagRepository(cfg, a.db)
	if err != nil {
		a.close()
		return nil, err
	}

	a.registry = tags.NewRegistryWithCache(repo, rule.NewRegistries(), cfg.Tags.CacheCapacity)
	a.tagger = tagging.NewTagger(tagging.Options{
		Workers:      cfg.Tagging.Workers,
		ChunkSize:    cfg.Tagging.ChunkSize,
		EnforceOrder: cfg.Tagging.EnforceOrder,
	})
	if a.loc, err = cfg.Report.Location(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func newTagRepository(cfg *config.Config, db *sql.DB) (tags.Repository, error) {
	switch cfg.Tags.SourceType {
	case config.SourceFilesystem:
		return tagstore.NewFileSystemRepository(cfg.Tags.Dir)
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("tags.source_type postgres requires database.dsn")
		}
		return postgres.NewTagRepository(db)
	case config.SourceMemory:
		return tagstore.NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unsupported tags.source_type %q", cfg.Tags.SourceType)
}
