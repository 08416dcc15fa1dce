package blocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
)

func titledBlock(id uuid.UUID, title, slug string, modified int64) *blocks.Block {
	block := &blocks.Block{ID: id}
	block.Title = title
	block.Slug = slug
	block.Modified = modified
	return block
}

func TestCollectionAddRejectsWrongKind(t *testing.T) {
	collection := blocks.NewBlockCollection(
		titledBlock(uuid.New(), "Hero", "hero", 10),
	)

	pattern := &blocks.Pattern{ID: uuid.New(), Title: "Two Columns", Slug: "two-columns"}
	err := collection.Add(pattern)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}

	var mismatch *blocks.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %T", err)
	}
	if mismatch.Expected != blocks.KindBlock || mismatch.Got != blocks.KindPattern {
		t.Fatalf("unexpected mismatch detail: %#v", mismatch)
	}
	if collection.Count() != 1 {
		t.Fatalf("failed insert must leave the collection unchanged, have %d items", collection.Count())
	}
}

func TestCollectionAddNilIsNoOp(t *testing.T) {
	collection := blocks.NewBlockCollection()
	if err := collection.Add(nil); err != nil {
		t.Fatalf("nil insert: %v", err)
	}
	if err := collection.Add((*blocks.Block)(nil)); err != nil {
		t.Fatalf("typed nil insert: %v", err)
	}
	if !collection.IsEmpty() {
		t.Fatalf("nil inserts should not grow the collection")
	}
}

func TestCollectionLookups(t *testing.T) {
	first := titledBlock(uuid.MustParse("00000000-0000-0000-0000-000000000001"), "Hero", "hero", 10)
	second := titledBlock(uuid.MustParse("00000000-0000-0000-0000-000000000002"), "Quote", "quote", 20)
	collection := blocks.NewBlockCollection(first, second)

	got, ok := collection.Get(second.ID)
	if !ok || got.Slug != "quote" {
		t.Fatalf("expected id lookup to find quote, got %#v", got)
	}

	got, ok = collection.GetBySlug("hero")
	if !ok || got.Title != "Hero" {
		t.Fatalf("expected slug lookup to find hero, got %#v", got)
	}

	if _, ok := collection.GetBySlug("missing"); ok {
		t.Fatalf("lookup for unknown slug should miss")
	}

	head, ok := collection.First()
	if !ok || head.Slug != "hero" {
		t.Fatalf("expected first item to be hero, got %#v", head)
	}
}

func TestCollectionSort(t *testing.T) {
	collection := blocks.NewBlockCollection(
		titledBlock(uuid.New(), "Quote", "quote", 30),
		titledBlock(uuid.New(), "Hero", "hero", 10),
		titledBlock(uuid.New(), "Banner", "banner", 20),
	)

	collection.Sort("modified")
	items := collection.Items()
	if items[0].Modified != 10 || items[1].Modified != 20 || items[2].Modified != 30 {
		t.Fatalf("unexpected order after numeric sort: %d %d %d",
			items[0].Modified, items[1].Modified, items[2].Modified)
	}

	collection.Sort("title")
	items = collection.Items()
	if items[0].Title != "Banner" || items[2].Title != "Quote" {
		t.Fatalf("unexpected order after string sort: %q %q %q",
			items[0].Title, items[1].Title, items[2].Title)
	}
}

func TestCollectionFilter(t *testing.T) {
	collection := blocks.NewBlockCollection(
		titledBlock(uuid.New(), "Hero", "hero", 10),
		titledBlock(uuid.New(), "Quote", "quote", 10),
		titledBlock(uuid.New(), "Banner", "banner", 20),
	)

	and := collection.Filter(map[string]any{"modified": 10, "slug": "hero"}, blocks.FilterAnd)
	if and.Count() != 1 {
		t.Fatalf("expected one AND match, got %d", and.Count())
	}

	or := collection.Filter(map[string]any{"modified": 20, "slug": "hero"}, blocks.FilterOr)
	if or.Count() != 2 {
		t.Fatalf("expected two OR matches, got %d", or.Count())
	}

	if collection.Count() != 3 {
		t.Fatalf("filter must not mutate the source collection")
	}
}

func TestBlockCollectionCSS(t *testing.T) {
	styled := titledBlock(uuid.New(), "Hero", "hero", 10)
	styled.CSS = ".hero { color: red; }"
	plain := titledBlock(uuid.New(), "Quote", "quote", 20)
	alsoStyled := titledBlock(uuid.New(), "Banner", "banner", 30)
	alsoStyled.CSS = ".banner { display: flex; }"

	collection := blocks.NewBlockCollection(styled, plain, alsoStyled)

	want := ".hero { color: red; }\n\n.banner { display: flex; }\n"
	if got := collection.CSS(); got != want {
		t.Fatalf("unexpected stylesheet:\n%q\nwant:\n%q", got, want)
	}

	if got := blocks.NewBlockCollection(plain).CSS(); got != "" {
		t.Fatalf("collection without styles should produce empty stylesheet, got %q", got)
	}
}

type recordingRegistrar struct {
	blocks   []string
	patterns []string
	failOn   string
}

func (r *recordingRegistrar) RegisterBlock(_ context.Context, block *blocks.Block) error {
	if r.failOn != "" && block.Slug == r.failOn {
		return errors.New("registration refused")
	}
	r.blocks = append(r.blocks, block.Slug)
	return nil
}

func (r *recordingRegistrar) RegisterPattern(_ context.Context, pattern *blocks.Pattern) error {
	r.patterns = append(r.patterns, pattern.Slug)
	return nil
}

func TestBlockCollectionRegisterAll(t *testing.T) {
	collection := blocks.NewBlockCollection(
		titledBlock(uuid.New(), "Hero", "hero", 10),
		titledBlock(uuid.New(), "Quote", "quote", 20),
	)

	registrar := &recordingRegistrar{}
	if err := collection.RegisterAll(context.Background(), registrar); err != nil {
		t.Fatalf("register all: %v", err)
	}
	if len(registrar.blocks) != 2 || registrar.blocks[0] != "hero" {
		t.Fatalf("unexpected registrations: %#v", registrar.blocks)
	}

	failing := &recordingRegistrar{failOn: "quote"}
	if err := collection.RegisterAll(context.Background(), failing); err == nil {
		t.Fatalf("expected registration failure to propagate")
	}
}
