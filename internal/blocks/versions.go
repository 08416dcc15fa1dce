package blocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/domain"
	"github.com/goliatone/go-blockbuilder/internal/logging"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

// VersionStore manages the published history of a block. Versions are
// immutable apart from cosmetic propagation into the latest entry, and every
// listing is newest first.
type VersionStore struct {
	repo   VersionRepository
	now    func() time.Time
	id     IDGenerator
	logger interfaces.Logger

	mu    sync.Mutex
	cache map[uuid.UUID][]*Version
}

// VersionStoreOption configures a VersionStore.
type VersionStoreOption func(*VersionStore)

// WithVersionClock overrides the clock used for version timestamps.
func WithVersionClock(now func() time.Time) VersionStoreOption {
	return func(s *VersionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithVersionIDGenerator overrides how new version identities are minted.
func WithVersionIDGenerator(id IDGenerator) VersionStoreOption {
	return func(s *VersionStore) {
		if id != nil {
			s.id = id
		}
	}
}

// WithVersionLogger attaches a logger to the store.
func WithVersionLogger(logger interfaces.Logger) VersionStoreOption {
	return func(s *VersionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewVersionStore constructs a version store on top of the given repository.
func NewVersionStore(repo VersionRepository, opts ...VersionStoreOption) *VersionStore {
	store := &VersionStore{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
		cache:  make(map[uuid.UUID][]*Version),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Load returns the block's versions newest first, serving repeated reads from
// an in-process cache until it is invalidated.
func (s *VersionStore) Load(ctx context.Context, blockID uuid.UUID) ([]*Version, error) {
	if blockID == uuid.Nil {
		return nil, nil
	}

	s.mu.Lock()
	cached, ok := s.cache[blockID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	records, err := s.repo.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[blockID] = records
	s.mu.Unlock()
	return records, nil
}

// Invalidate drops the cached history for one block.
func (s *VersionStore) Invalidate(blockID uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, blockID)
	s.mu.Unlock()
}

// Reset drops every cached history.
func (s *VersionStore) Reset() {
	s.mu.Lock()
	s.cache = make(map[uuid.UUID][]*Version)
	s.mu.Unlock()
}

// Latest returns the most recent version, or nil without error when the
// block has no history yet.
func (s *VersionStore) Latest(ctx context.Context, blockID uuid.UUID) (*Version, error) {
	records, err := s.Load(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Publish freezes the block's current definition into a new version. The
// block must already carry a storage identity.
func (s *VersionStore) Publish(ctx context.Context, block *Block) (*Version, error) {
	if block == nil {
		return nil, ErrBlockRequired
	}
	if !block.Saved() {
		return nil, &PreconditionError{Op: "blocks: publish version", Reason: ErrBlockIDRequired}
	}

	version := &Version{
		ID:               s.id(),
		BlockID:          block.ID,
		DefinitionFields: block.DefinitionFields.cloneFields(),
		CreatedAt:        s.now(),
	}
	version.Status = domain.StatusPublish

	record, err := s.repo.Create(ctx, version)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("published block version",
		"block_id", block.ID.String(),
		"version_id", record.ID.String(),
	)

	s.mu.Lock()
	if cached, ok := s.cache[block.ID]; ok {
		s.cache[block.ID] = append([]*Version{record}, cached...)
	}
	s.mu.Unlock()
	return record, nil
}

// PublishIfNeeded publishes a new version when the block's structural state
// diverges from the latest published one. A block with no history always
// gets a bootstrap version. Reports whether a version was created.
func (s *VersionStore) PublishIfNeeded(ctx context.Context, block *Block) (bool, error) {
	if block == nil {
		return false, ErrBlockRequired
	}

	latest, err := s.Latest(ctx, block.ID)
	if err != nil {
		return false, err
	}

	if latest != nil {
		equal, err := StructurallyEqual(latest.Data, block.Data)
		if err != nil {
			return false, err
		}
		if equal {
			return false, nil
		}
	}

	if _, err := s.Publish(ctx, block); err != nil {
		return false, err
	}
	return true, nil
}

// PropagateCosmetic copies the block's presentation-only fields into its
// latest version without creating a new one. Structural fields stay frozen.
func (s *VersionStore) PropagateCosmetic(ctx context.Context, block *Block) error {
	if block == nil {
		return ErrBlockRequired
	}

	latest, err := s.Latest(ctx, block.ID)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}

	// The title stays frozen at publish time; only presentation metadata
	// flows through.
	updated := latest.Clone()
	updated.CSS = block.CSS
	if updated.Data == nil {
		updated.Data = DefaultData()
	}
	if source := block.Data; source != nil {
		updated.Data.Icon = source.Icon
		updated.Data.Description = source.Description
		updated.Data.Keywords = source.Keywords
		updated.Data.Category = source.Category
		updated.Data.Parent = append([]string{}, source.Parent...)
		updated.Data.Ancestor = append([]string{}, source.Ancestor...)
		updated.Data.Sidebar = source.Sidebar.clone()
		updated.Data.Supports = source.Supports
		updated.Data.Supports.Align = append([]string{}, source.Supports.Align...)
	}

	if _, err := s.repo.Update(ctx, updated); err != nil {
		return err
	}

	s.Invalidate(block.ID)
	return nil
}

// Restore writes externally sourced versions into a block's history. Input
// arrives newest first; entries are persisted oldest first with increasing
// timestamps so listings reproduce the original order.
func (s *VersionStore) Restore(ctx context.Context, blockID uuid.UUID, versions []*Version) error {
	if blockID == uuid.Nil {
		return &PreconditionError{Op: "blocks: restore versions", Reason: ErrBlockIDRequired}
	}

	base := s.now()
	for i := len(versions) - 1; i >= 0; i-- {
		record := versions[i].Clone()
		record.ID = s.id()
		record.BlockID = blockID
		record.CreatedAt = base.Add(time.Duration(len(versions)-1-i) * time.Millisecond)
		if _, err := s.repo.Create(ctx, record); err != nil {
			return err
		}
	}

	s.Invalidate(blockID)
	return nil
}

// DeleteAll removes the block's entire history.
func (s *VersionStore) DeleteAll(ctx context.Context, blockID uuid.UUID) error {
	if blockID == uuid.Nil {
		return nil
	}
	if err := s.repo.DeleteByBlock(ctx, blockID); err != nil {
		return err
	}
	s.Invalidate(blockID)
	return nil
}
