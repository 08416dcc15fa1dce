package blocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/domain"
)

// ListCriteria narrows block listings. Zero value lists everything.
type ListCriteria struct {
	IDs            []uuid.UUID
	Status         []domain.Status
	Namespace      string
	ExcludeTrashed bool
	OrderBy        string
}

// BlockRepository persists block records.
type BlockRepository interface {
	Create(ctx context.Context, block *Block) (*Block, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Block, error)
	GetBySlug(ctx context.Context, slug string) (*Block, error)
	List(ctx context.Context, criteria ListCriteria) ([]*Block, error)
	Update(ctx context.Context, block *Block) (*Block, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VersionRepository persists published version records. Listings return the
// newest version first.
type VersionRepository interface {
	Create(ctx context.Context, version *Version) (*Version, error)
	ListByBlock(ctx context.Context, blockID uuid.UUID) ([]*Version, error)
	Update(ctx context.Context, version *Version) (*Version, error)
	DeleteByBlock(ctx context.Context, blockID uuid.UUID) error
}

// PatternRepository persists pattern records.
type PatternRepository interface {
	Create(ctx context.Context, pattern *Pattern) (*Pattern, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Pattern, error)
	GetBySlug(ctx context.Context, slug string) (*Pattern, error)
	List(ctx context.Context) ([]*Pattern, error)
	Update(ctx context.Context, pattern *Pattern) (*Pattern, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
