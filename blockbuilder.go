// Package blockbuilder wires the block definition engine: storage-backed
// services, version history, snapshot files, and the sync flows between
// them. Hosts embed the Module and drive it through the exposed services.
package blockbuilder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
	"github.com/goliatone/go-blockbuilder/internal/logging"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

// Config carries the host-facing settings for the module.
type Config struct {
	// Namespace prefixes block names saved without one.
	Namespace string
	// SnapshotDirs lists the directories scanned for snapshot files. Writes
	// target the first entry.
	SnapshotDirs []string
	// Logger provides module-scoped loggers. Nil falls back to no-op logging.
	Logger interfaces.LoggerProvider
	// CacheService and KeySerializer enable repository caching when both are
	// set and a database is attached.
	CacheService  cache.CacheService
	KeySerializer cache.KeySerializer
}

// Validate checks the configuration before wiring.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SnapshotDirs, validation.Required, validation.Each(validation.Required)),
	)
}

// Module bundles the wired services for one block builder instance.
type Module struct {
	Blocks    blocks.Service
	Versions  *blocks.VersionStore
	Snapshots *blocks.SnapshotStore
	Sync      *blocks.SyncEngine
}

type moduleDeps struct {
	db       *bun.DB
	repo     blocks.BlockRepository
	versions blocks.VersionRepository
	patterns blocks.PatternRepository
	now      func() time.Time
	id       blocks.IDGenerator
}

// ModuleOption overrides module wiring.
type ModuleOption func(*moduleDeps)

// WithDB attaches a database; repositories become storage backed instead of
// in memory.
func WithDB(db *bun.DB) ModuleOption {
	return func(d *moduleDeps) {
		d.db = db
	}
}

// WithBlockRepository swaps the block repository implementation.
func WithBlockRepository(repo blocks.BlockRepository) ModuleOption {
	return func(d *moduleDeps) {
		if repo != nil {
			d.repo = repo
		}
	}
}

// WithVersionRepository swaps the version repository implementation.
func WithVersionRepository(repo blocks.VersionRepository) ModuleOption {
	return func(d *moduleDeps) {
		if repo != nil {
			d.versions = repo
		}
	}
}

// WithPatternRepository swaps the pattern repository implementation.
func WithPatternRepository(repo blocks.PatternRepository) ModuleOption {
	return func(d *moduleDeps) {
		if repo != nil {
			d.patterns = repo
		}
	}
}

// WithClock overrides the module clock.
func WithClock(now func() time.Time) ModuleOption {
	return func(d *moduleDeps) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator overrides how the module mints identities.
func WithIDGenerator(id blocks.IDGenerator) ModuleOption {
	return func(d *moduleDeps) {
		if id != nil {
			d.id = id
		}
	}
}

// New wires a module from the configuration. Without a database the module
// runs on in-memory repositories, which suits embedded and test usage.
func New(cfg Config, opts ...ModuleOption) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("blockbuilder: invalid config: %w", err)
	}

	deps := &moduleDeps{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(deps)
	}

	if deps.db != nil {
		if deps.repo == nil {
			deps.repo = blocks.NewBunBlockRepositoryWithCache(deps.db, cfg.CacheService, cfg.KeySerializer)
		}
		if deps.versions == nil {
			deps.versions = blocks.NewBunVersionRepositoryWithCache(deps.db, cfg.CacheService, cfg.KeySerializer)
		}
		if deps.patterns == nil {
			deps.patterns = blocks.NewBunPatternRepositoryWithCache(deps.db, cfg.CacheService, cfg.KeySerializer)
		}
	} else {
		if deps.repo == nil {
			deps.repo = blocks.NewMemoryBlockRepository()
		}
		if deps.versions == nil {
			deps.versions = blocks.NewMemoryVersionRepository()
		}
		if deps.patterns == nil {
			deps.patterns = blocks.NewMemoryPatternRepository()
		}
	}

	versionOpts := []blocks.VersionStoreOption{
		blocks.WithVersionClock(deps.now),
		blocks.WithVersionLogger(logging.BlocksLogger(cfg.Logger)),
	}
	if deps.id != nil {
		versionOpts = append(versionOpts, blocks.WithVersionIDGenerator(deps.id))
	}
	versions := blocks.NewVersionStore(deps.versions, versionOpts...)

	serviceOpts := []blocks.Option{
		blocks.WithClock(deps.now),
		blocks.WithLogger(logging.BlocksLogger(cfg.Logger)),
		blocks.WithPatternRepository(deps.patterns),
	}
	if cfg.Namespace != "" {
		serviceOpts = append(serviceOpts, blocks.WithNamespace(cfg.Namespace))
	}
	if deps.id != nil {
		serviceOpts = append(serviceOpts, blocks.WithIDGenerator(deps.id))
	}
	service := blocks.NewService(deps.repo, versions, serviceOpts...)

	snapshots := blocks.NewSnapshotStore(cfg.SnapshotDirs,
		blocks.WithSnapshotLogger(logging.SnapshotLogger(cfg.Logger)),
	)

	engine := blocks.NewSyncEngine(service, versions, snapshots,
		blocks.WithSyncLogger(logging.SyncLogger(cfg.Logger)),
	)

	return &Module{
		Blocks:    service,
		Versions:  versions,
		Snapshots: snapshots,
		Sync:      engine,
	}, nil
}

// OpenSQLite opens a SQLite-backed bun database and runs the block
// migrations against it.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("blockbuilder: open database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := blocks.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
