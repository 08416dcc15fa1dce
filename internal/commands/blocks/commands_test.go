package blockscmd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
	blockscmd "github.com/goliatone/go-blockbuilder/internal/commands/blocks"
)

func newCommandEngine(t *testing.T) (*blocks.SyncEngine, blocks.Service, *blocks.SnapshotStore) {
	t.Helper()
	versions := blocks.NewVersionStore(blocks.NewMemoryVersionRepository())
	svc := blocks.NewService(blocks.NewMemoryBlockRepository(), versions)
	snapshots := blocks.NewSnapshotStore([]string{t.TempDir()})
	return blocks.NewSyncEngine(svc, versions, snapshots), svc, snapshots
}

func TestMessageValidation(t *testing.T) {
	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{"sync empty ok", blockscmd.SyncBlocksCommand{}, false},
		{"sync blank slug", blockscmd.SyncBlocksCommand{Slugs: []string{""}}, true},
		{"import missing path", blockscmd.ImportBlocksCommand{}, true},
		{"import ok", blockscmd.ImportBlocksCommand{Path: "blocks.json"}, false},
		{"export missing ids", blockscmd.ExportBlocksCommand{Path: "out.json"}, true},
		{"export bad id", blockscmd.ExportBlocksCommand{IDs: []string{"nope"}, Path: "out.json"}, true},
		{"export ok", blockscmd.ExportBlocksCommand{IDs: []string{"3d9a4cb1-68f5-4f79-a9c9-11f72e2f1fd1"}, Path: "out.json"}, false},
		{"duplicate missing id", blockscmd.DuplicateBlockCommand{}, true},
		{"trash bad id", blockscmd.TrashBlockCommand{ID: "nope"}, true},
	}

	for _, tc := range cases {
		err := tc.msg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected validation error: %v", tc.name, err)
		}
	}
}

func TestSyncHandlerExecutes(t *testing.T) {
	ctx := context.Background()
	engine, svc, snapshots := newCommandEngine(t)

	block := &blocks.Block{}
	block.Title = "Hero"
	saved, err := svc.Save(ctx, block)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := snapshots.Write(saved, nil); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	handler := blockscmd.NewSyncBlocksHandler(engine, nil)
	if err := handler.Execute(ctx, blockscmd.SyncBlocksCommand{Slugs: []string{"hero"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestSyncHandlerReportsFailures(t *testing.T) {
	engine, _, _ := newCommandEngine(t)

	handler := blockscmd.NewSyncBlocksHandler(engine, nil)
	if err := handler.Execute(context.Background(), blockscmd.SyncBlocksCommand{Slugs: []string{"missing"}}); err == nil {
		t.Fatalf("expected failure for unknown slug")
	}
}

func TestExportImportHandlers(t *testing.T) {
	ctx := context.Background()
	engine, svc, _ := newCommandEngine(t)

	block := &blocks.Block{}
	block.Title = "Hero"
	saved, err := svc.Save(ctx, block)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	exporter := blockscmd.NewExportBlocksHandler(engine, nil)
	if err := exporter.Execute(ctx, blockscmd.ExportBlocksCommand{
		IDs:  []string{saved.ID.String()},
		Path: path,
	}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	target, targetSvc, _ := newCommandEngine(t)
	importer := blockscmd.NewImportBlocksHandler(target, nil)
	if err := importer.Execute(ctx, blockscmd.ImportBlocksCommand{Path: path}); err != nil {
		t.Fatalf("import: %v", err)
	}
	imported, err := targetSvc.GetBySlug(ctx, saved.Slug)
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	if imported.ID == saved.ID {
		t.Fatalf("imported block should carry a fresh identity")
	}
}
