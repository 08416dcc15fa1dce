package blocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/domain"
)

// NewMemoryBlockRepository constructs an "in memory" block repository.
func NewMemoryBlockRepository() BlockRepository {
	return &memoryBlockRepository{
		byID: make(map[uuid.UUID]*Block),
	}
}

type memoryBlockRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Block
}

func (m *memoryBlockRepository) Create(_ context.Context, block *Block) (*Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := block.Clone()
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryBlockRepository) GetByID(_ context.Context, id uuid.UUID) (*Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "block", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryBlockRepository) GetBySlug(_ context.Context, slug string) (*Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.byID {
		if record.Slug == slug && record.Status != domain.StatusTrash {
			return record.Clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "block", Key: slug}
}

func (m *memoryBlockRepository) List(_ context.Context, criteria ListCriteria) ([]*Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Block, 0, len(m.byID))
	for _, record := range m.byID {
		if matchesCriteria(record, criteria) {
			records = append(records, record.Clone())
		}
	}

	orderBy := criteria.OrderBy
	if orderBy == "" {
		orderBy = "title"
	}
	sort.SliceStable(records, func(i, j int) bool {
		left, _ := records[i].Field(orderBy)
		right, _ := records[j].Field(orderBy)
		return compareValues(left, right) < 0
	})
	return records, nil
}

func (m *memoryBlockRepository) Update(_ context.Context, block *Block) (*Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[block.ID]; !ok {
		return nil, &NotFoundError{Resource: "block", Key: block.ID.String()}
	}

	cloned := block.Clone()
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryBlockRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "block", Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}

func matchesCriteria(record *Block, criteria ListCriteria) bool {
	if len(criteria.IDs) > 0 {
		found := false
		for _, id := range criteria.IDs {
			if record.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(criteria.Status) > 0 {
		found := false
		for _, status := range criteria.Status {
			if record.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if criteria.Namespace != "" && record.Namespace != criteria.Namespace {
		return false
	}
	if criteria.ExcludeTrashed && record.Status == domain.StatusTrash {
		return false
	}
	return true
}

// NewMemoryVersionRepository constructs an "in memory" version repository.
func NewMemoryVersionRepository() VersionRepository {
	return &memoryVersionRepository{
		byBlock: make(map[uuid.UUID][]*Version),
	}
}

type memoryVersionRepository struct {
	mu      sync.RWMutex
	byBlock map[uuid.UUID][]*Version
}

func (m *memoryVersionRepository) Create(_ context.Context, version *Version) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := version.Clone()
	// Newest first, matching the ordering of the storage-backed listing.
	m.byBlock[cloned.BlockID] = append([]*Version{cloned}, m.byBlock[cloned.BlockID]...)
	return cloned.Clone(), nil
}

func (m *memoryVersionRepository) ListByBlock(_ context.Context, blockID uuid.UUID) ([]*Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.byBlock[blockID]
	out := make([]*Version, 0, len(records))
	for _, record := range records {
		out = append(out, record.Clone())
	}
	return out, nil
}

func (m *memoryVersionRepository) Update(_ context.Context, version *Version) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.byBlock[version.BlockID]
	for i, record := range records {
		if record.ID == version.ID {
			cloned := version.Clone()
			records[i] = cloned
			return cloned.Clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "block_version", Key: version.ID.String()}
}

func (m *memoryVersionRepository) DeleteByBlock(_ context.Context, blockID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byBlock, blockID)
	return nil
}

// NewMemoryPatternRepository constructs an "in memory" pattern repository.
func NewMemoryPatternRepository() PatternRepository {
	return &memoryPatternRepository{
		byID: make(map[uuid.UUID]*Pattern),
	}
}

type memoryPatternRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Pattern
}

func (m *memoryPatternRepository) Create(_ context.Context, pattern *Pattern) (*Pattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := pattern.Clone()
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryPatternRepository) GetByID(_ context.Context, id uuid.UUID) (*Pattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "block_pattern", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryPatternRepository) GetBySlug(_ context.Context, slug string) (*Pattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.byID {
		if record.Slug == slug {
			return record.Clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "block_pattern", Key: slug}
}

func (m *memoryPatternRepository) List(_ context.Context) ([]*Pattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Pattern, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record.Clone())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Title < records[j].Title
	})
	return records, nil
}

func (m *memoryPatternRepository) Update(_ context.Context, pattern *Pattern) (*Pattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[pattern.ID]; !ok {
		return nil, &NotFoundError{Resource: "block_pattern", Key: pattern.ID.String()}
	}

	cloned := pattern.Clone()
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryPatternRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "block_pattern", Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}
