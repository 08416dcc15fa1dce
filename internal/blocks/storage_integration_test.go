package blocks_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
	"github.com/goliatone/go-blockbuilder/pkg/testsupport"
)

func newIntegrationDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := blocks.Migrate(context.Background(), bunDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return bunDB
}

func TestBlocksService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()
	bunDB := newIntegrationDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	blockRepo := blocks.NewBunBlockRepositoryWithCache(bunDB, cacheService, keySerializer)
	versionRepo := blocks.NewBunVersionRepositoryWithCache(bunDB, cacheService, keySerializer)
	patternRepo := blocks.NewBunPatternRepositoryWithCache(bunDB, cacheService, keySerializer)

	versions := blocks.NewVersionStore(versionRepo)
	svc := blocks.NewService(blockRepo, versions, blocks.WithPatternRepository(patternRepo))

	saved, err := svc.Save(ctx, draftBlock("Hero"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}

	if _, err := svc.GetBySlug(ctx, "hero"); err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "hero"); err != nil {
		t.Fatalf("second cached get by slug: %v", err)
	}

	if _, err := versions.PublishIfNeeded(ctx, saved); err != nil {
		t.Fatalf("publish: %v", err)
	}
	history, err := versionRepo.ListByBlock(ctx, saved.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one stored version, got %d", len(history))
	}
}

func TestBunVersionRepositoryOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	bunDB := newIntegrationDB(t)

	repo := blocks.NewBunVersionRepository(bunDB)
	blockID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		version := &blocks.Version{
			ID:        uuid.New(),
			BlockID:   blockID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		version.Title = string(rune('a' + i))
		if _, err := repo.Create(ctx, version); err != nil {
			t.Fatalf("create version %d: %v", i, err)
		}
	}

	records, err := repo.ListByBlock(ctx, blockID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected three versions, got %d", len(records))
	}
	if records[0].Title != "c" || records[2].Title != "a" {
		t.Fatalf("expected newest first, got %q %q %q",
			records[0].Title, records[1].Title, records[2].Title)
	}
}

func TestBunBlockRepositoryGetBySlugIgnoresTrashed(t *testing.T) {
	ctx := context.Background()
	bunDB := newIntegrationDB(t)

	repo := blocks.NewBunBlockRepository(bunDB)

	block := titledBlock(uuid.New(), "Hero", "hero", 10)
	block.Status = "trash"
	block.Namespace = "acme"
	if _, err := repo.Create(ctx, block); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.GetBySlug(ctx, "hero"); err == nil {
		t.Fatalf("trashed block should not resolve by slug")
	}
}
