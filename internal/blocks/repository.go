package blocks

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewBlockModelRepository(db *bun.DB) repository.Repository[*Block] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Block]{
		NewRecord:          func() *Block { return &Block{} },
		GetID:              func(b *Block) uuid.UUID { return b.ID },
		SetID:              func(b *Block, id uuid.UUID) { b.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(b *Block) string { return b.Slug },
	})
}

// NewVersionModelRepository creates a repository for Version entities.
// Versions have no natural-key column, so the identifier handlers stay unset
// and lookups go through the id.
func NewVersionModelRepository(db *bun.DB) repository.Repository[*Version] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Version]{
		NewRecord: func() *Version { return &Version{} },
		GetID:     func(v *Version) uuid.UUID { return v.ID },
		SetID:     func(v *Version, id uuid.UUID) { v.ID = id },
	})
}

// NewPatternModelRepository creates a repository for Pattern entities.
func NewPatternModelRepository(db *bun.DB) repository.Repository[*Pattern] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Pattern]{
		NewRecord:          func() *Pattern { return &Pattern{} },
		GetID:              func(p *Pattern) uuid.UUID { return p.ID },
		SetID:              func(p *Pattern, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(p *Pattern) string { return p.Slug },
	})
}
