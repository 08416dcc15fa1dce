package blocks

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/domain"
	"github.com/goliatone/go-blockbuilder/internal/logging"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

// UntitledBlockTitle is assigned to blocks saved without a title.
const UntitledBlockTitle = "(untitled block)"

// DefaultNamespace prefixes block names when the caller does not set one.
const DefaultNamespace = "blockbuilder"

// IDGenerator mints identities for new records.
type IDGenerator func() uuid.UUID

// Service manages block and pattern lifecycles: persistence, version
// publication, duplication, and status transitions.
type Service interface {
	Save(ctx context.Context, block *Block) (*Block, error)
	Get(ctx context.Context, id uuid.UUID) (*Block, error)
	GetBySlug(ctx context.Context, slug string) (*Block, error)
	Slugs(ctx context.Context) ([]string, error)
	CollectionFromIDs(ctx context.Context, ids []uuid.UUID, loadVersions bool) (*BlockCollection, error)
	CollectionFromQuery(ctx context.Context, criteria ListCriteria, loadVersions bool) (*BlockCollection, error)
	PublishVersionIfNeeded(ctx context.Context, block *Block) (bool, error)
	Versions(ctx context.Context, blockID uuid.UUID) ([]*Version, error)
	Duplicate(ctx context.Context, id uuid.UUID) (*Block, error)
	Trash(ctx context.Context, id uuid.UUID) (*Block, error)
	Delete(ctx context.Context, id uuid.UUID) error

	SavePattern(ctx context.Context, pattern *Pattern) (*Pattern, error)
	GetPattern(ctx context.Context, id uuid.UUID) (*Pattern, error)
	Patterns(ctx context.Context) (*PatternCollection, error)
	DeletePattern(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      BlockRepository
	patterns  PatternRepository
	versions  *VersionStore
	namespace string
	now       func() time.Time
	id        IDGenerator
	logger    interfaces.Logger
}

// Option configures the block service.
type Option func(*service)

// WithClock overrides the clock used for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new block identities are minted.
func WithIDGenerator(id IDGenerator) Option {
	return func(s *service) {
		if id != nil {
			s.id = id
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNamespace overrides the namespace assigned to blocks saved without one.
func WithNamespace(namespace string) Option {
	return func(s *service) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithPatternRepository enables pattern operations on the service.
func WithPatternRepository(patterns PatternRepository) Option {
	return func(s *service) {
		if patterns != nil {
			s.patterns = patterns
		}
	}
}

// NewService constructs the block service.
func NewService(repo BlockRepository, versions *VersionStore, opts ...Option) Service {
	svc := &service{
		repo:      repo,
		patterns:  NewMemoryPatternRepository(),
		versions:  versions,
		namespace: DefaultNamespace,
		now:       time.Now,
		id:        uuid.New,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Save persists the block, filling defaults for missing fields, refreshing
// the modification timestamp, and propagating cosmetic changes into the
// latest published version.
func (s *service) Save(ctx context.Context, block *Block) (*Block, error) {
	if block == nil {
		return nil, ErrBlockRequired
	}

	record := block.Clone()
	if record.Data == nil {
		record.Data = DefaultData()
	}
	if record.Title == "" {
		record.Title = UntitledBlockTitle
	}
	if record.Namespace == "" {
		record.Namespace = s.namespace
	}
	if record.Status == "" {
		record.Status = domain.StatusDraft
	}
	if !record.Status.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("status %q", record.Status), Err: ErrStatusInvalid}
	}
	if record.Slug == "" {
		normalized, err := slug.Normalize(record.Title)
		if err != nil || normalized == "" {
			return nil, &ValidationError{Reason: "slug", Err: ErrSlugRequired}
		}
		record.Slug = normalized
	}
	record.Modified = s.now().Unix()

	var (
		saved *Block
		err   error
	)
	if record.Saved() {
		record.UpdatedAt = s.now()
		saved, err = s.repo.Update(ctx, record)
	} else {
		record.ID = s.id()
		record.CreatedAt = s.now()
		record.UpdatedAt = record.CreatedAt
		saved, err = s.repo.Create(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	if err := s.versions.PropagateCosmetic(ctx, saved); err != nil {
		return nil, err
	}

	s.logger.Debug("saved block", "id", saved.ID.String(), "slug", saved.Slug)
	return saved, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Block, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Block, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Slugs returns the slug of every non-trashed block.
func (s *service) Slugs(ctx context.Context) ([]string, error) {
	records, err := s.repo.List(ctx, ListCriteria{ExcludeTrashed: true, OrderBy: "slug"})
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(records))
	for _, record := range records {
		slugs = append(slugs, record.Slug)
	}
	return slugs, nil
}

// CollectionFromIDs assembles a collection from explicit identities,
// skipping ids with no record.
func (s *service) CollectionFromIDs(ctx context.Context, ids []uuid.UUID, loadVersions bool) (*BlockCollection, error) {
	if len(ids) == 0 {
		return NewBlockCollection(), nil
	}
	records, err := s.repo.List(ctx, ListCriteria{IDs: ids})
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, records, loadVersions)
}

// CollectionFromQuery assembles a collection from list criteria.
func (s *service) CollectionFromQuery(ctx context.Context, criteria ListCriteria, loadVersions bool) (*BlockCollection, error) {
	records, err := s.repo.List(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, records, loadVersions)
}

func (s *service) assemble(ctx context.Context, records []*Block, loadVersions bool) (*BlockCollection, error) {
	collection := NewBlockCollection()
	for _, record := range records {
		if loadVersions {
			versions, err := s.versions.Load(ctx, record.ID)
			if err != nil {
				return nil, err
			}
			record.Versions = versions
		}
		collection.Append(record)
	}
	return collection, nil
}

func (s *service) PublishVersionIfNeeded(ctx context.Context, block *Block) (bool, error) {
	return s.versions.PublishIfNeeded(ctx, block)
}

func (s *service) Versions(ctx context.Context, blockID uuid.UUID) ([]*Version, error) {
	return s.versions.Load(ctx, blockID)
}

// Duplicate copies a block into a fresh draft with a derived title and slug.
// History does not carry over; the copy starts without versions.
func (s *service) Duplicate(ctx context.Context, id uuid.UUID) (*Block, error) {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, err := s.copyTitle(ctx, source.Title)
	if err != nil {
		return nil, err
	}

	copied := source.Clone()
	copied.ID = uuid.Nil
	copied.Versions = nil
	copied.Title = title
	copied.Status = domain.StatusDraft
	copied.Slug = ""

	return s.Save(ctx, copied)
}

// copyTitle finds the first "<title> (copy N)" not taken by a non-trashed
// block, counting from 1.
func (s *service) copyTitle(ctx context.Context, base string) (string, error) {
	records, err := s.repo.List(ctx, ListCriteria{ExcludeTrashed: true})
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(records))
	for _, record := range records {
		taken[record.Title] = true
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (copy %d)", base, n)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

// Trash moves the block into the trash status. The record and its history
// stay in storage until Delete.
func (s *service) Trash(ctx context.Context, id uuid.UUID) (*Block, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Status = domain.StatusTrash
	record.Modified = s.now().Unix()
	record.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("trashed block", "id", id.String(), "slug", updated.Slug)
	return updated, nil
}

// Delete removes the block and cascades through its version history.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.versions.DeleteAll(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted block", "id", id.String())
	return nil
}

// SavePattern persists a pattern, deriving a slug from the title when absent.
func (s *service) SavePattern(ctx context.Context, pattern *Pattern) (*Pattern, error) {
	if pattern == nil {
		return nil, ErrBlockRequired
	}

	record := pattern.Clone()
	if record.Title == "" {
		record.Title = UntitledBlockTitle
	}
	if record.Status == "" {
		record.Status = domain.StatusDraft
	}
	if !record.Status.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("status %q", record.Status), Err: ErrStatusInvalid}
	}
	if record.Slug == "" {
		normalized, err := slug.Normalize(record.Title)
		if err != nil || normalized == "" {
			return nil, &ValidationError{Reason: "slug", Err: ErrSlugRequired}
		}
		record.Slug = normalized
	}

	if record.ID != uuid.Nil {
		record.UpdatedAt = s.now()
		return s.patterns.Update(ctx, record)
	}
	record.ID = s.id()
	record.CreatedAt = s.now()
	record.UpdatedAt = record.CreatedAt
	return s.patterns.Create(ctx, record)
}

func (s *service) GetPattern(ctx context.Context, id uuid.UUID) (*Pattern, error) {
	return s.patterns.GetByID(ctx, id)
}

func (s *service) Patterns(ctx context.Context) (*PatternCollection, error) {
	records, err := s.patterns.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewPatternCollection(records...), nil
}

func (s *service) DeletePattern(ctx context.Context, id uuid.UUID) error {
	return s.patterns.Delete(ctx, id)
}
