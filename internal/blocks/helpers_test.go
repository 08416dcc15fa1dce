package blocks_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blockbuilder/internal/blocks"
)

func newSequentialIDs() blocks.IDGenerator {
	return sequentialIDsFrom(0)
}

// sequentialIDsFrom mints deterministic ids counting up from start, so two
// stores in one test can be given disjoint identity ranges.
func sequentialIDsFrom(start int) blocks.IDGenerator {
	counter := start
	return func() uuid.UUID {
		counter++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012x", counter))
	}
}

type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

func newTestService() (blocks.Service, *blocks.VersionStore, *testClock) {
	clock := newTestClock()
	ids := newSequentialIDs()
	versions := blocks.NewVersionStore(blocks.NewMemoryVersionRepository(),
		blocks.WithVersionClock(clock.Now),
		blocks.WithVersionIDGenerator(ids),
	)
	svc := blocks.NewService(blocks.NewMemoryBlockRepository(), versions,
		blocks.WithClock(clock.Now),
		blocks.WithIDGenerator(ids),
		blocks.WithPatternRepository(blocks.NewMemoryPatternRepository()),
	)
	return svc, versions, clock
}

func draftBlock(title string) *blocks.Block {
	block := &blocks.Block{}
	block.Title = title
	block.Data = blocks.DefaultData()
	return block
}
