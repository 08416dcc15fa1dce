package blocks_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
)

func newTestEngine(t *testing.T) (*blocks.SyncEngine, blocks.Service, *blocks.VersionStore, *blocks.SnapshotStore, *testClock) {
	t.Helper()
	svc, versions, clock := newTestService()
	snapshots := blocks.NewSnapshotStore([]string{t.TempDir()})
	engine := blocks.NewSyncEngine(svc, versions, snapshots)
	return engine, svc, versions, snapshots, clock
}

func TestDeriveSyncStatus(t *testing.T) {
	record := titledBlock(uuid.New(), "Hero", "hero", 100)
	current := &blocks.Snapshot{Slug: "hero", Block: titledBlock(uuid.Nil, "Hero", "hero", 100)}
	newer := &blocks.Snapshot{Slug: "hero", Block: titledBlock(uuid.Nil, "Hero", "hero", 200)}
	older := &blocks.Snapshot{Slug: "hero", Block: titledBlock(uuid.Nil, "Hero", "hero", 50)}

	cases := []struct {
		name     string
		record   *blocks.Block
		snapshot *blocks.Snapshot
		want     blocks.SyncStatus
	}{
		{"no record", nil, current, blocks.SyncStatusAwaitingImport},
		{"no snapshot", record, nil, blocks.SyncStatusAwaitingSave},
		{"snapshot newer", record, newer, blocks.SyncStatusOutdated},
		{"snapshot equal", record, current, blocks.SyncStatusSynced},
		{"snapshot older", record, older, blocks.SyncStatusSynced},
	}

	for _, tc := range cases {
		if got := blocks.DeriveSyncStatus(tc.record, tc.snapshot); got != tc.want {
			t.Fatalf("%s: want %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestEngineSaveWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	engine, _, _, snapshots, _ := newTestEngine(t)

	saved, err := engine.Save(ctx, draftBlock("Hero"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snapshot, ok, err := snapshots.Get(saved.Slug)
	if err != nil || !ok {
		t.Fatalf("expected snapshot after save: ok=%v err=%v", ok, err)
	}
	if snapshot.Block.Modified != saved.Modified {
		t.Fatalf("snapshot and record should agree on modified")
	}

	status, err := engine.Status(ctx, saved.Slug)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != blocks.SyncStatusSynced {
		t.Fatalf("expected synced after engine save, got %q", status)
	}
}

func TestSyncImportsNewSnapshot(t *testing.T) {
	ctx := context.Background()
	engine, svc, versions, snapshots, _ := newTestEngine(t)

	incoming := titledBlock(uuid.Nil, "Hero", "hero", 123)
	incoming.Data = blocks.DefaultData()
	version := &blocks.Version{}
	version.Title = "Hero"
	version.Data = incoming.Data.Clone()
	incoming.Versions = []*blocks.Version{version}
	if _, err := snapshots.Write(incoming, incoming.Versions); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	outcome := engine.Sync(ctx)
	if len(outcome.Failed) != 0 {
		t.Fatalf("sync failures: %#v", outcome.Failed)
	}
	if len(outcome.Succeeded) != 1 {
		t.Fatalf("expected one synced block, got %d", len(outcome.Succeeded))
	}

	saved, err := svc.GetBySlug(ctx, "hero")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	history, err := versions.Load(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load versions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected snapshot versions to be persisted, got %d", len(history))
	}
	if history[0].BlockID != saved.ID {
		t.Fatalf("versions should be rebound to the saved block")
	}

	status, err := engine.Status(ctx, "hero")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != blocks.SyncStatusSynced {
		t.Fatalf("expected synced after sync, got %q", status)
	}
}

func TestSyncPreservesExistingIdentity(t *testing.T) {
	ctx := context.Background()
	engine, svc, versions, snapshots, clock := newTestEngine(t)

	saved, err := engine.Save(ctx, draftBlock("Hero"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := versions.PublishIfNeeded(ctx, saved); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Simulate a newer snapshot arriving from another environment.
	clock.Advance(time.Hour)
	incoming := saved.Clone()
	incoming.ID = uuid.Nil
	incoming.Title = "Hero Reworked"
	incoming.Modified = clock.Now().Unix() + 999
	newVersion := &blocks.Version{}
	newVersion.Title = "Hero Reworked"
	newVersion.Data = incoming.Data.Clone()
	if _, err := snapshots.Write(incoming, []*blocks.Version{newVersion}); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	outcome := engine.Sync(ctx, "hero")
	if len(outcome.Failed) != 0 {
		t.Fatalf("sync failures: %#v", outcome.Failed)
	}

	synced, err := svc.GetBySlug(ctx, "hero")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if synced.ID != saved.ID {
		t.Fatalf("sync must keep the existing identity: %s vs %s", synced.ID, saved.ID)
	}
	if synced.Title != "Hero Reworked" {
		t.Fatalf("sync should apply the snapshot definition, got %q", synced.Title)
	}

	history, err := versions.Load(ctx, synced.ID)
	if err != nil {
		t.Fatalf("load versions: %v", err)
	}
	if len(history) != 1 || history[0].Title != "Hero Reworked" {
		t.Fatalf("sync should replace the stored history: %#v", history)
	}

	status, err := engine.Status(ctx, "hero")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != blocks.SyncStatusSynced {
		t.Fatalf("record and snapshot should converge after sync, got %q", status)
	}
}

func TestSyncReportsUnknownSlug(t *testing.T) {
	engine, _, _, _, _ := newTestEngine(t)

	outcome := engine.Sync(context.Background(), "missing")
	if len(outcome.Failed) != 1 || outcome.Failed[0].Slug != "missing" {
		t.Fatalf("expected failure for unknown slug, got %#v", outcome.Failed)
	}
}

func TestMissing(t *testing.T) {
	ctx := context.Background()
	engine, _, _, snapshots, _ := newTestEngine(t)

	if _, err := engine.Save(ctx, draftBlock("Hero")); err != nil {
		t.Fatalf("save: %v", err)
	}

	orphan := titledBlock(uuid.Nil, "Quote", "quote", 5)
	if _, err := snapshots.Write(orphan, nil); err != nil {
		t.Fatalf("write orphan snapshot: %v", err)
	}

	missing, err := engine.Missing(ctx)
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if missing.Count() != 1 {
		t.Fatalf("expected one missing block, got %d", missing.Count())
	}
	if block, ok := missing.GetBySlug("quote"); !ok || block.Title != "Quote" {
		t.Fatalf("expected quote to be awaiting import, got %#v", block)
	}
}

func TestCollectionFromSnapshots(t *testing.T) {
	engine, _, _, snapshots, _ := newTestEngine(t)

	quote := titledBlock(uuid.Nil, "Quote", "quote", 10)
	hero := titledBlock(uuid.Nil, "Hero", "hero", 10)
	for _, block := range []*blocks.Block{quote, hero} {
		if _, err := snapshots.Write(block, nil); err != nil {
			t.Fatalf("write %s: %v", block.Slug, err)
		}
	}

	collection, err := engine.CollectionFromSnapshots()
	if err != nil {
		t.Fatalf("collection from snapshots: %v", err)
	}
	if collection.Count() != 2 {
		t.Fatalf("expected two snapshot blocks, got %d", collection.Count())
	}
	first, ok := collection.First()
	if !ok || first.Slug != "hero" {
		t.Fatalf("expected slug-sorted collection starting with hero, got %#v", first)
	}
	if first.Saved() {
		t.Fatalf("snapshot blocks should carry no storage identity")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, _, versions, _, _ := newTestEngine(t)

	hero, err := engine.Save(ctx, draftBlock("Hero"))
	if err != nil {
		t.Fatalf("save hero: %v", err)
	}
	if _, err := versions.PublishIfNeeded(ctx, hero); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	quote, err := engine.Save(ctx, draftBlock("Quote"))
	if err != nil {
		t.Fatalf("save quote: %v", err)
	}

	var buf bytes.Buffer
	if err := engine.Export(ctx, []uuid.UUID{hero.ID, quote.ID}, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Import into a fresh engine to emulate another installation. Its
	// identity range is disjoint from the source so fresh-id assertions
	// cannot collide.
	targetIDs := sequentialIDsFrom(1000)
	targetVersions := blocks.NewVersionStore(blocks.NewMemoryVersionRepository(),
		blocks.WithVersionIDGenerator(targetIDs),
	)
	targetSvc := blocks.NewService(blocks.NewMemoryBlockRepository(), targetVersions,
		blocks.WithIDGenerator(targetIDs),
	)
	target := blocks.NewSyncEngine(targetSvc, targetVersions,
		blocks.NewSnapshotStore([]string{t.TempDir()}))
	outcome, err := target.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(outcome.Failed) != 0 {
		t.Fatalf("import failures: %#v", outcome.Failed)
	}
	if len(outcome.Succeeded) != 2 {
		t.Fatalf("expected two imported blocks, got %d", len(outcome.Succeeded))
	}

	imported, err := targetSvc.GetBySlug(ctx, "hero")
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	if imported.ID == hero.ID {
		t.Fatalf("imported blocks must receive fresh identities")
	}
	history, err := targetVersions.Load(ctx, imported.ID)
	if err != nil {
		t.Fatalf("load imported versions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("exported history should survive import, got %d versions", len(history))
	}
}

func TestImportRejectsMalformedDocument(t *testing.T) {
	engine, _, _, _, _ := newTestEngine(t)

	if _, err := engine.Import(context.Background(), strings.NewReader(`{"title": "Hero", "surprise": 1}`)); err == nil {
		t.Fatalf("expected malformed import to fail as a whole")
	}
}

func TestTrashRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	engine, _, _, snapshots, _ := newTestEngine(t)

	saved, err := engine.Save(ctx, draftBlock("Hero"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	trashed, err := engine.Trash(ctx, saved.ID)
	if err != nil {
		t.Fatalf("trash: %v", err)
	}
	if trashed.Status != "trash" {
		t.Fatalf("expected trash status, got %q", trashed.Status)
	}

	snapshots.Invalidate()
	if _, ok, err := snapshots.Get(saved.Slug); err != nil {
		t.Fatalf("get: %v", err)
	} else if ok {
		t.Fatalf("trash should remove the snapshot file")
	}
}
