package blocks

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-blockbuilder/internal/logging"
	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

const snapshotExtension = ".json"

// Snapshot pairs a parsed snapshot document with the file it came from.
type Snapshot struct {
	Slug  string
	Path  string
	Block *Block
}

// SnapshotStore reads and writes block snapshot files across one or more
// directories. Reads are cached until invalidated; writes always target the
// first directory.
type SnapshotStore struct {
	dirs   []string
	logger interfaces.Logger

	mu      sync.Mutex
	cache   map[string]*Snapshot
	scanned bool
}

// SnapshotStoreOption configures a SnapshotStore.
type SnapshotStoreOption func(*SnapshotStore)

// WithSnapshotLogger attaches a logger to the store.
func WithSnapshotLogger(logger interfaces.Logger) SnapshotStoreOption {
	return func(s *SnapshotStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSnapshotStore constructs a snapshot store over the given directories.
// At least one directory is required for writes to have a target.
func NewSnapshotStore(dirs []string, opts ...SnapshotStoreOption) *SnapshotStore {
	store := &SnapshotStore{
		dirs:   dirs,
		logger: logging.NoOp(),
		cache:  make(map[string]*Snapshot),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Scan walks every configured directory and returns the parsed snapshots
// keyed by slug. Unreadable directories and malformed files are logged and
// skipped; they never fail the scan. Later directories do not override
// earlier ones on slug collision.
func (s *SnapshotStore) Scan() (map[string]*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanned {
		return s.snapshotMapLocked(), nil
	}

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("snapshot directory missing, skipping", "dir", dir)
			} else {
				s.logger.Warn("snapshot directory unreadable, skipping", "dir", dir, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotExtension) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			raw, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn("snapshot unreadable, skipping", "path", path, "error", err)
				continue
			}
			block, err := ParseSnapshot(raw)
			if err != nil {
				s.logger.Warn("snapshot malformed, skipping", "path", path, "error", err)
				continue
			}
			// The filename is the authoritative slug; a document claiming
			// another one is realigned so sync stays keyed by file.
			slug := strings.TrimSuffix(entry.Name(), snapshotExtension)
			if block.Slug != "" && block.Slug != slug {
				s.logger.Warn("snapshot slug differs from filename, using filename",
					"path", path, "document_slug", block.Slug)
			}
			block.Slug = slug
			if _, exists := s.cache[slug]; exists {
				s.logger.Warn("duplicate snapshot slug, keeping first", "slug", slug, "path", path)
				continue
			}
			s.cache[slug] = &Snapshot{Slug: slug, Path: path, Block: block}
		}
	}

	s.scanned = true
	return s.snapshotMapLocked(), nil
}

func (s *SnapshotStore) snapshotMapLocked() map[string]*Snapshot {
	out := make(map[string]*Snapshot, len(s.cache))
	for slug, snapshot := range s.cache {
		out[slug] = snapshot
	}
	return out
}

// Get returns the snapshot for one slug, scanning first when needed.
func (s *SnapshotStore) Get(slug string) (*Snapshot, bool, error) {
	snapshots, err := s.Scan()
	if err != nil {
		return nil, false, err
	}
	snapshot, ok := snapshots[slug]
	return snapshot, ok, nil
}

// Invalidate drops the scan cache so the next read hits the filesystem.
func (s *SnapshotStore) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]*Snapshot)
	s.scanned = false
	s.mu.Unlock()
}

// Write persists the block and its history as a snapshot file named after
// the slug, returning the path written.
func (s *SnapshotStore) Write(block *Block, versions []*Version) (string, error) {
	if block == nil {
		return "", ErrBlockRequired
	}
	if block.Slug == "" {
		return "", ErrSlugRequired
	}
	if len(s.dirs) == 0 {
		return "", &IOError{Op: "write", Path: block.Slug + snapshotExtension, Err: errors.New("no snapshot directory configured")}
	}

	dir := s.dirs[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	raw, err := MarshalSnapshot(block, versions)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, block.Slug+snapshotExtension)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", &IOError{Op: "write", Path: path, Err: err}
	}

	s.mu.Lock()
	if s.scanned {
		parsed, parseErr := ParseSnapshot(raw)
		if parseErr == nil {
			s.cache[block.Slug] = &Snapshot{Slug: block.Slug, Path: path, Block: parsed}
		}
	}
	s.mu.Unlock()

	s.logger.Debug("wrote snapshot", "slug", block.Slug, "path", path)
	return path, nil
}

// Delete removes the slug's snapshot file from every configured directory.
// A missing file is not an error.
func (s *SnapshotStore) Delete(slug string) error {
	if slug == "" {
		return ErrSlugRequired
	}

	for _, dir := range s.dirs {
		path := filepath.Join(dir, slug+snapshotExtension)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &IOError{Op: "remove", Path: path, Err: err}
		}
	}

	s.mu.Lock()
	delete(s.cache, slug)
	s.mu.Unlock()
	return nil
}

// Path returns where a snapshot for the slug would be written.
func (s *SnapshotStore) Path(slug string) string {
	if len(s.dirs) == 0 {
		return ""
	}
	return filepath.Join(s.dirs[0], slug+snapshotExtension)
}
