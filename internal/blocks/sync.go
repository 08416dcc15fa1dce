package blocks

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/internal/logging"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

// SyncStatus describes where a block stands relative to its snapshot file.
type SyncStatus string

const (
	// SyncStatusSynced means the record and snapshot agree.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusOutdated means the snapshot is newer than the record.
	SyncStatusOutdated SyncStatus = "outdated"
	// SyncStatusAwaitingSave means the record has no snapshot file yet.
	SyncStatusAwaitingSave SyncStatus = "awaiting_save"
	// SyncStatusAwaitingImport means a snapshot exists with no record.
	SyncStatusAwaitingImport SyncStatus = "awaiting_import"
)

// Failure records one slug that could not be processed in a bulk operation.
type Failure struct {
	Slug string
	Err  error
}

// Outcome aggregates the per-item results of a bulk sync or import.
type Outcome struct {
	Succeeded []*Block
	Failed    []Failure
}

func (o *Outcome) fail(slug string, err error) {
	o.Failed = append(o.Failed, Failure{Slug: slug, Err: err})
}

// SyncEngine reconciles stored block records with their snapshot files and
// drives the portable import and export flows.
type SyncEngine struct {
	service   Service
	versions  *VersionStore
	snapshots *SnapshotStore
	logger    interfaces.Logger
}

// SyncOption configures a SyncEngine.
type SyncOption func(*SyncEngine)

// WithSyncLogger attaches a logger to the engine.
func WithSyncLogger(logger interfaces.Logger) SyncOption {
	return func(e *SyncEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewSyncEngine constructs a sync engine over the service, version store,
// and snapshot store.
func NewSyncEngine(service Service, versions *VersionStore, snapshots *SnapshotStore, opts ...SyncOption) *SyncEngine {
	engine := &SyncEngine{
		service:   service,
		versions:  versions,
		snapshots: snapshots,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DeriveSyncStatus classifies one record/snapshot pair. Either side may be
// nil.
func DeriveSyncStatus(record *Block, snapshot *Snapshot) SyncStatus {
	if record == nil {
		return SyncStatusAwaitingImport
	}
	if snapshot == nil || snapshot.Block == nil {
		return SyncStatusAwaitingSave
	}
	if snapshot.Block.Modified > record.Modified {
		return SyncStatusOutdated
	}
	return SyncStatusSynced
}

// Status reports the sync status for one slug.
func (e *SyncEngine) Status(ctx context.Context, slug string) (SyncStatus, error) {
	record, err := e.service.GetBySlug(ctx, slug)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return "", err
		}
		record = nil
	}

	snapshot, _, err := e.snapshots.Get(slug)
	if err != nil {
		return "", err
	}

	return DeriveSyncStatus(record, snapshot), nil
}

// Missing returns the snapshot blocks that have no stored record yet, in
// other words everything awaiting import.
func (e *SyncEngine) Missing(ctx context.Context) (*BlockCollection, error) {
	snapshots, err := e.snapshots.Scan()
	if err != nil {
		return nil, err
	}

	slugs, err := e.service.Slugs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		known[slug] = true
	}

	missing := NewBlockCollection()
	for slug, snapshot := range snapshots {
		if !known[slug] {
			missing.Append(snapshot.Block)
		}
	}
	missing.Sort("slug")
	return missing, nil
}

// CollectionFromSnapshots assembles a collection of every parsed snapshot
// definition, sorted by slug. The blocks carry no storage identity until they
// are synced.
func (e *SyncEngine) CollectionFromSnapshots() (*BlockCollection, error) {
	snapshots, err := e.snapshots.Scan()
	if err != nil {
		return nil, err
	}
	collection := NewBlockCollection()
	for _, snapshot := range snapshots {
		collection.Append(snapshot.Block)
	}
	collection.Sort("slug")
	return collection, nil
}

// Sync applies snapshot files to storage. With no slugs it processes every
// snapshot found. An existing record keeps its identity; its history is
// replaced by the snapshot's, and the snapshot file is rewritten with the
// refreshed modification timestamp so both sides agree afterwards.
func (e *SyncEngine) Sync(ctx context.Context, slugs ...string) *Outcome {
	outcome := &Outcome{}

	snapshots, err := e.snapshots.Scan()
	if err != nil {
		outcome.fail("", err)
		return outcome
	}

	if len(slugs) == 0 {
		slugs = make([]string, 0, len(snapshots))
		for slug := range snapshots {
			slugs = append(slugs, slug)
		}
	}

	for _, slug := range slugs {
		snapshot, ok := snapshots[slug]
		if !ok {
			outcome.fail(slug, &NotFoundError{Resource: "snapshot", Key: slug})
			continue
		}
		saved, err := e.syncOne(ctx, snapshot)
		if err != nil {
			e.logger.Warn("sync failed", "slug", slug, "error", err)
			outcome.fail(slug, err)
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, saved)
	}

	e.logger.Info("sync finished",
		"succeeded", len(outcome.Succeeded),
		"failed", len(outcome.Failed),
	)
	return outcome
}

func (e *SyncEngine) syncOne(ctx context.Context, snapshot *Snapshot) (*Block, error) {
	block := snapshot.Block.Clone()
	incomingVersions := block.Versions
	block.Versions = nil
	block.ID = uuid.Nil

	existing, err := e.service.GetBySlug(ctx, snapshot.Slug)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		existing = nil
	}

	if existing != nil {
		block.ID = existing.ID
		if err := e.versions.DeleteAll(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	saved, err := e.service.Save(ctx, block)
	if err != nil {
		return nil, err
	}

	if len(incomingVersions) > 0 {
		if err := e.versions.Restore(ctx, saved.ID, incomingVersions); err != nil {
			return nil, err
		}
	}

	restored, err := e.versions.Load(ctx, saved.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.snapshots.Write(saved, restored); err != nil {
		return nil, err
	}
	return saved, nil
}

// Save persists the block and refreshes its snapshot file so the two stay in
// step.
func (e *SyncEngine) Save(ctx context.Context, block *Block) (*Block, error) {
	saved, err := e.service.Save(ctx, block)
	if err != nil {
		return nil, err
	}

	versions, err := e.versions.Load(ctx, saved.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.snapshots.Write(saved, versions); err != nil {
		return nil, err
	}
	return saved, nil
}

// Export streams the selected blocks, histories included, as a portable
// document. Identities are stripped in transit.
func (e *SyncEngine) Export(ctx context.Context, ids []uuid.UUID, w io.Writer) error {
	collection, err := e.service.CollectionFromIDs(ctx, ids, true)
	if err != nil {
		return err
	}
	if collection.IsEmpty() {
		return &NotFoundError{Resource: "block"}
	}
	return WriteExport(w, collection.Items())
}

// Import reads a portable document and saves every definition it contains as
// a fresh record. Item failures are collected per slug; a malformed document
// fails as a whole.
func (e *SyncEngine) Import(ctx context.Context, r io.Reader) (*Outcome, error) {
	blocks, err := UnmarshalImport(r)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for _, block := range blocks {
		incomingVersions := block.Versions
		block.Versions = nil
		block.ID = uuid.Nil

		saved, err := e.service.Save(ctx, block)
		if err != nil {
			outcome.fail(block.Slug, err)
			continue
		}
		if len(incomingVersions) > 0 {
			if err := e.versions.Restore(ctx, saved.ID, incomingVersions); err != nil {
				outcome.fail(saved.Slug, err)
				continue
			}
		}
		outcome.Succeeded = append(outcome.Succeeded, saved)
	}

	e.logger.Info("import finished",
		"succeeded", len(outcome.Succeeded),
		"failed", len(outcome.Failed),
	)
	return outcome, nil
}

// Duplicate copies a block into a fresh draft. The copy has no snapshot
// until it is saved through the engine.
func (e *SyncEngine) Duplicate(ctx context.Context, id uuid.UUID) (*Block, error) {
	return e.service.Duplicate(ctx, id)
}

// Trash moves the block to the trash status and removes its snapshot file so
// the slug stops appearing in scans.
func (e *SyncEngine) Trash(ctx context.Context, id uuid.UUID) (*Block, error) {
	trashed, err := e.service.Trash(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.snapshots.Delete(trashed.Slug); err != nil {
		return nil, err
	}
	return trashed, nil
}

// Delete removes the block and its history from storage.
func (e *SyncEngine) Delete(ctx context.Context, id uuid.UUID) error {
	return e.service.Delete(ctx, id)
}
