package blocks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blockbuilder/domain"
)

// Kind identifies the entity family stored in a collection.
type Kind string

const (
	KindBlock   Kind = "block"
	KindVersion Kind = "block_version"
	KindPattern Kind = "block_pattern"
)

// Entity is the common contract shared by blocks, versions, and patterns so
// typed collections can sort, filter, and index them uniformly.
type Entity interface {
	EntityID() uuid.UUID
	EntityKind() Kind
	Field(name string) (any, bool)
}

// DefinitionFields carries the payload shared by a block and every one of its
// versions. A version is a frozen copy of these fields at publish time.
type DefinitionFields struct {
	Title     string        `bun:"title,notnull" json:"title"`
	Status    domain.Status `bun:"status,notnull,default:'draft'" json:"status"`
	Namespace string        `bun:"namespace,notnull" json:"namespace"`
	Slug      string        `bun:"slug,notnull" json:"slug"`
	Modified  int64         `bun:"modified,notnull,default:0" json:"modified"`
	Data      *Data         `bun:"data,type:jsonb" json:"data"`
	CSS       string        `bun:"css" json:"css"`
}

func (f DefinitionFields) cloneFields() DefinitionFields {
	copied := f
	copied.Data = f.Data.Clone()
	return copied
}

// Block is a reusable content definition. The mutable record always reflects
// the current draft; published structural states live in Versions, newest
// first.
type Block struct {
	bun.BaseModel `bun:"table:blocks,alias:b"`

	ID uuid.UUID `bun:"id,pk,type:uuid" json:"id"`

	DefinitionFields

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`

	Versions []*Version `bun:"rel:has-many,join:id=block_id" json:"-"`
}

func (b *Block) EntityID() uuid.UUID {
	if b == nil {
		return uuid.Nil
	}
	return b.ID
}

func (b *Block) EntityKind() Kind { return KindBlock }

// Saved reports whether the block has been assigned a storage identity.
func (b *Block) Saved() bool {
	return b != nil && b.ID != uuid.Nil
}

// Name returns the registration handle, namespace-qualified.
func (b *Block) Name() string {
	return fmt.Sprintf("%s/%s", b.Namespace, b.Slug)
}

func (b *Block) Field(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	switch name {
	case "id":
		return b.ID, true
	case "title":
		return b.Title, true
	case "status":
		return string(b.Status), true
	case "namespace":
		return b.Namespace, true
	case "slug":
		return b.Slug, true
	case "modified":
		return b.Modified, true
	case "css":
		return b.CSS, true
	}
	return nil, false
}

func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	copied := *b
	copied.DefinitionFields = b.DefinitionFields.cloneFields()
	if b.Versions != nil {
		copied.Versions = make([]*Version, len(b.Versions))
		for i, version := range b.Versions {
			copied.Versions[i] = version.Clone()
		}
	}
	return &copied
}

// Version is an immutable snapshot of a block's definition taken when a
// structural change is published.
type Version struct {
	bun.BaseModel `bun:"table:block_versions,alias:bv"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	BlockID uuid.UUID `bun:"block_id,notnull,type:uuid" json:"parent"`

	DefinitionFields

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

func (v *Version) EntityID() uuid.UUID {
	if v == nil {
		return uuid.Nil
	}
	return v.ID
}

func (v *Version) EntityKind() Kind { return KindVersion }

func (v *Version) Field(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch name {
	case "id":
		return v.ID, true
	case "parent":
		return v.BlockID, true
	case "title":
		return v.Title, true
	case "status":
		return string(v.Status), true
	case "namespace":
		return v.Namespace, true
	case "slug":
		return v.Slug, true
	case "modified":
		return v.Modified, true
	case "css":
		return v.CSS, true
	}
	return nil, false
}

func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	copied := *v
	copied.DefinitionFields = v.DefinitionFields.cloneFields()
	return &copied
}

// Pattern is a reusable arrangement of block markup registered alongside
// block definitions.
type Pattern struct {
	bun.BaseModel `bun:"table:block_patterns,alias:bp"`

	ID      uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	Title   string        `bun:"title,notnull" json:"title"`
	Slug    string        `bun:"slug,notnull" json:"slug"`
	Status  domain.Status `bun:"status,notnull,default:'draft'" json:"status"`
	Content string        `bun:"content" json:"content"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

func (p *Pattern) EntityID() uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return p.ID
}

func (p *Pattern) EntityKind() Kind { return KindPattern }

func (p *Pattern) Field(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch name {
	case "id":
		return p.ID, true
	case "title":
		return p.Title, true
	case "slug":
		return p.Slug, true
	case "status":
		return string(p.Status), true
	case "content":
		return p.Content, true
	}
	return nil, false
}

func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}
