package blocks

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blockbuilder/domain"
)

// BunBlockRepository implements BlockRepository with optional caching.
type BunBlockRepository struct {
	repo repository.Repository[*Block]
}

// NewBunBlockRepository creates a block repository without caching.
func NewBunBlockRepository(db *bun.DB) *BunBlockRepository {
	return NewBunBlockRepositoryWithCache(db, nil, nil)
}

// NewBunBlockRepositoryWithCache creates a block repository with caching services.
func NewBunBlockRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunBlockRepository {
	base := NewBlockModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunBlockRepository{repo: base}
}

func (r *BunBlockRepository) Create(ctx context.Context, block *Block) (*Block, error) {
	record, err := r.repo.Create(ctx, block)
	if err != nil {
		return nil, &StorageError{Op: "create block", Err: err}
	}
	return record, nil
}

func (r *BunBlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block", id.String())
	}
	return record, nil
}

func (r *BunBlockRepository) GetBySlug(ctx context.Context, slug string) (*Block, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.status != ?", string(domain.StatusTrash))
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "block", Key: slug}
	}
	return records[0], nil
}

func (r *BunBlockRepository) List(ctx context.Context, criteria ListCriteria) ([]*Block, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return applyListCriteria(q, criteria)
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "block", "")
	}
	return records, nil
}

func (r *BunBlockRepository) Update(ctx context.Context, block *Block) (*Block, error) {
	updated, err := r.repo.Update(ctx, block,
		repository.UpdateByID(block.ID.String()),
		repository.UpdateColumns(
			"title",
			"status",
			"namespace",
			"slug",
			"modified",
			"data",
			"css",
			"updated_at",
		),
	)
	if err != nil {
		return nil, &StorageError{Op: "update block", Err: err}
	}
	return updated, nil
}

func (r *BunBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Block{ID: id}); err != nil {
		return &StorageError{Op: "delete block", Err: err}
	}
	return nil
}

// BunVersionRepository implements VersionRepository with optional caching.
type BunVersionRepository struct {
	repo repository.Repository[*Version]
}

// NewBunVersionRepository creates a version repository without caching.
func NewBunVersionRepository(db *bun.DB) *BunVersionRepository {
	return NewBunVersionRepositoryWithCache(db, nil, nil)
}

// NewBunVersionRepositoryWithCache creates a version repository with caching services.
func NewBunVersionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunVersionRepository {
	base := NewVersionModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunVersionRepository{repo: base}
}

func (r *BunVersionRepository) Create(ctx context.Context, version *Version) (*Version, error) {
	record, err := r.repo.Create(ctx, version)
	if err != nil {
		return nil, &StorageError{Op: "create version", Err: err}
	}
	return record, nil
}

func (r *BunVersionRepository) ListByBlock(ctx context.Context, blockID uuid.UUID) ([]*Version, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.block_id = ?", blockID)
	}), repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "block_version", blockID.String())
	}
	return records, nil
}

func (r *BunVersionRepository) Update(ctx context.Context, version *Version) (*Version, error) {
	updated, err := r.repo.Update(ctx, version,
		repository.UpdateByID(version.ID.String()),
		repository.UpdateColumns(
			"data",
			"css",
		),
	)
	if err != nil {
		return nil, &StorageError{Op: "update version", Err: err}
	}
	return updated, nil
}

func (r *BunVersionRepository) DeleteByBlock(ctx context.Context, blockID uuid.UUID) error {
	records, err := r.ListByBlock(ctx, blockID)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := r.repo.Delete(ctx, record); err != nil {
			return &StorageError{Op: "delete version", Err: err}
		}
	}
	return nil
}

// BunPatternRepository implements PatternRepository with optional caching.
type BunPatternRepository struct {
	repo repository.Repository[*Pattern]
}

// NewBunPatternRepository creates a pattern repository without caching.
func NewBunPatternRepository(db *bun.DB) *BunPatternRepository {
	return NewBunPatternRepositoryWithCache(db, nil, nil)
}

// NewBunPatternRepositoryWithCache creates a pattern repository with caching services.
func NewBunPatternRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPatternRepository {
	base := NewPatternModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunPatternRepository{repo: base}
}

func (r *BunPatternRepository) Create(ctx context.Context, pattern *Pattern) (*Pattern, error) {
	record, err := r.repo.Create(ctx, pattern)
	if err != nil {
		return nil, &StorageError{Op: "create pattern", Err: err}
	}
	return record, nil
}

func (r *BunPatternRepository) GetByID(ctx context.Context, id uuid.UUID) (*Pattern, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block_pattern", id.String())
	}
	return record, nil
}

func (r *BunPatternRepository) GetBySlug(ctx context.Context, slug string) (*Pattern, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block_pattern", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "block_pattern", Key: slug}
	}
	return records[0], nil
}

func (r *BunPatternRepository) List(ctx context.Context) ([]*Pattern, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.title ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "block_pattern", "")
	}
	return records, nil
}

func (r *BunPatternRepository) Update(ctx context.Context, pattern *Pattern) (*Pattern, error) {
	updated, err := r.repo.Update(ctx, pattern,
		repository.UpdateByID(pattern.ID.String()),
		repository.UpdateColumns(
			"title",
			"slug",
			"status",
			"content",
			"updated_at",
		),
	)
	if err != nil {
		return nil, &StorageError{Op: "update pattern", Err: err}
	}
	return updated, nil
}

func (r *BunPatternRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Pattern{ID: id}); err != nil {
		return &StorageError{Op: "delete pattern", Err: err}
	}
	return nil
}

func applyListCriteria(q *bun.SelectQuery, criteria ListCriteria) *bun.SelectQuery {
	if q == nil {
		return q
	}
	if len(criteria.IDs) > 0 {
		q = q.Where("?TableAlias.id IN (?)", bun.In(criteria.IDs))
	}
	if len(criteria.Status) > 0 {
		statuses := make([]string, 0, len(criteria.Status))
		for _, status := range criteria.Status {
			statuses = append(statuses, string(status))
		}
		q = q.Where("?TableAlias.status IN (?)", bun.In(statuses))
	}
	if criteria.Namespace != "" {
		q = q.Where("?TableAlias.namespace = ?", criteria.Namespace)
	}
	if criteria.ExcludeTrashed {
		q = q.Where("?TableAlias.status != ?", string(domain.StatusTrash))
	}
	orderBy := criteria.OrderBy
	if orderBy == "" {
		orderBy = "title"
	}
	return q.OrderExpr("?TableAlias.? ASC", bun.Ident(orderBy))
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}
