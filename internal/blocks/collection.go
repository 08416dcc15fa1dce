package blocks

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FilterOperator selects how multiple filter criteria combine.
type FilterOperator string

const (
	FilterAnd FilterOperator = "and"
	FilterOr  FilterOperator = "or"
)

// Registrar receives block and pattern definitions for registration with an
// editor runtime.
type Registrar interface {
	RegisterBlock(ctx context.Context, block *Block) error
	RegisterPattern(ctx context.Context, pattern *Pattern) error
}

// Collection is an ordered, homogeneous set of entities with lookup, sort,
// and filter helpers. Inserting an entity of a different kind through Add is
// rejected with a TypeMismatchError.
type Collection[T Entity] struct {
	items []T
}

// NewCollection returns an empty collection for the given entity type.
func NewCollection[T Entity](items ...T) *Collection[T] {
	c := &Collection[T]{}
	for _, item := range items {
		c.Append(item)
	}
	return c
}

func collectionKind[T Entity]() Kind {
	var zero T
	return zero.EntityKind()
}

// Add inserts an untyped entity, enforcing kind homogeneity at runtime. Nil
// input is a no-op.
func (c *Collection[T]) Add(item Entity) error {
	if item == nil || isNilEntity(item) {
		return nil
	}
	typed, ok := item.(T)
	if !ok {
		return &TypeMismatchError{Expected: collectionKind[T](), Got: item.EntityKind()}
	}
	c.items = append(c.items, typed)
	return nil
}

// Append inserts an already-typed entity. Nil input is a no-op.
func (c *Collection[T]) Append(item T) {
	if isNilEntity(item) {
		return
	}
	c.items = append(c.items, item)
}

func (c *Collection[T]) Count() int {
	return len(c.items)
}

func (c *Collection[T]) IsEmpty() bool {
	return len(c.items) == 0
}

// First returns the initial item in collection order.
func (c *Collection[T]) First() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[0], true
}

// Get returns the item with the given identity.
func (c *Collection[T]) Get(id uuid.UUID) (T, bool) {
	return c.GetByKey("id", id)
}

// GetByKey returns the first item whose named field equals value.
func (c *Collection[T]) GetByKey(field string, value any) (T, bool) {
	for _, item := range c.items {
		if current, ok := item.Field(field); ok && equalValues(current, value) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Sort orders the collection in place, ascending by the named field. Items
// without the field keep their relative order at the end.
func (c *Collection[T]) Sort(field string) {
	sort.SliceStable(c.items, func(i, j int) bool {
		left, okLeft := c.items[i].Field(field)
		right, okRight := c.items[j].Field(field)
		if !okLeft || !okRight {
			return okLeft && !okRight
		}
		return compareValues(left, right) < 0
	})
}

// Filter returns a new collection holding the items that match the criteria
// under the given operator. The receiver is left untouched.
func (c *Collection[T]) Filter(criteria map[string]any, op FilterOperator) *Collection[T] {
	filtered := &Collection[T]{}
	if len(criteria) == 0 {
		filtered.items = append(filtered.items, c.items...)
		return filtered
	}
	for _, item := range c.items {
		if matches(item, criteria, op) {
			filtered.items = append(filtered.items, item)
		}
	}
	return filtered
}

// Items returns the backing slice in collection order.
func (c *Collection[T]) Items() []T {
	return c.items
}

func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func matches[T Entity](item T, criteria map[string]any, op FilterOperator) bool {
	for field, want := range criteria {
		current, ok := item.Field(field)
		matched := ok && equalValues(current, want)
		if op == FilterOr {
			if matched {
				return true
			}
			continue
		}
		if !matched {
			return false
		}
	}
	return op != FilterOr
}

func isNilEntity(item Entity) bool {
	if item == nil {
		return true
	}
	value := reflect.ValueOf(item)
	return value.Kind() == reflect.Pointer && value.IsNil()
}

func equalValues(a, b any) bool {
	if aNum, aOK := toFloat(a); aOK {
		if bNum, bOK := toFloat(b); bOK {
			return aNum == bNum
		}
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) int {
	if aNum, aOK := toFloat(a); aOK {
		if bNum, bOK := toFloat(b); bOK {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}

	switch left := a.(type) {
	case string:
		if right, ok := b.(string); ok {
			return strings.Compare(left, right)
		}
	case uuid.UUID:
		if right, ok := b.(uuid.UUID); ok {
			return strings.Compare(left.String(), right.String())
		}
	case time.Time:
		if right, ok := b.(time.Time); ok {
			return left.Compare(right)
		}
	case bool:
		if right, ok := b.(bool); ok {
			switch {
			case left == right:
				return 0
			case !left:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// BlockCollection specializes Collection for blocks with slug lookup,
// stylesheet aggregation, and bulk registration helpers.
type BlockCollection struct {
	Collection[*Block]
}

// NewBlockCollection returns a block collection seeded with the given blocks.
func NewBlockCollection(items ...*Block) *BlockCollection {
	c := &BlockCollection{}
	for _, item := range items {
		c.Append(item)
	}
	return c
}

// GetBySlug returns the block with the given slug.
func (c *BlockCollection) GetBySlug(slug string) (*Block, bool) {
	return c.GetByKey("slug", slug)
}

// CSS concatenates the stylesheets of every block carrying one, separated by
// blank lines, with a trailing newline.
func (c *BlockCollection) CSS() string {
	chunks := make([]string, 0, c.Count())
	for _, block := range c.Items() {
		if block.CSS != "" {
			chunks = append(chunks, block.CSS)
		}
	}
	if len(chunks) == 0 {
		return ""
	}
	return strings.Join(chunks, "\n\n") + "\n"
}

// RegisterAll registers every block in collection order, stopping at the
// first failure.
func (c *BlockCollection) RegisterAll(ctx context.Context, registrar Registrar) error {
	for _, block := range c.Items() {
		if err := registrar.RegisterBlock(ctx, block); err != nil {
			return fmt.Errorf("blocks: register %s: %w", block.Name(), err)
		}
	}
	return nil
}

// PatternCollection specializes Collection for patterns.
type PatternCollection struct {
	Collection[*Pattern]
}

// NewPatternCollection returns a pattern collection seeded with the given
// patterns.
func NewPatternCollection(items ...*Pattern) *PatternCollection {
	c := &PatternCollection{}
	for _, item := range items {
		c.Append(item)
	}
	return c
}

// RegisterAll registers every pattern in collection order, stopping at the
// first failure.
func (c *PatternCollection) RegisterAll(ctx context.Context, registrar Registrar) error {
	for _, pattern := range c.Items() {
		if err := registrar.RegisterPattern(ctx, pattern); err != nil {
			return fmt.Errorf("blocks: register pattern %s: %w", pattern.Slug, err)
		}
	}
	return nil
}
