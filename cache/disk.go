package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
)

// diskEnvelope is the on-disk record: the value plus the recorded cost of
// computing it.
type diskEnvelope[V any] struct {
	CostNanos int64 `json:"cost_ns"`
	Value     V     `json:"value"`
}

// DiskPolicy persists entries as files under a directory so cached results
// survive process restarts. Filenames are "<name>_<hash>.cache" where hash is
// a digest of the derived key. Read and write failures are logged and treated
// as misses; the policy degrades to recomputation rather than surfacing
// storage errors to callers.
type DiskPolicy[V any] struct {
	mu         sync.Mutex
	name       string
	dir        string
	expiration time.Duration
	serializer Serializer
	logger     *slog.Logger
	files      map[string]string
	now        func() time.Time
}

// DiskOption configures a DiskPolicy.
type DiskOption[V any] func(*DiskPolicy[V])

// WithExpiration makes persisted entries stale after d. Stale files are
// removed on lookup and the lookup reported as a miss. Zero means entries
// never expire.
func WithExpiration[V any](d time.Duration) DiskOption[V] {
	return func(p *DiskPolicy[V]) {
		p.expiration = d
	}
}

// WithSerializer overrides the JSON default.
func WithSerializer[V any](s Serializer) DiskOption[V] {
	return func(p *DiskPolicy[V]) {
		p.serializer = s
	}
}

// WithDiskLogger routes storage-failure logs to the given logger.
func WithDiskLogger[V any](logger *slog.Logger) DiskOption[V] {
	return func(p *DiskPolicy[V]) {
		p.logger = logger
	}
}

// NewDisk creates a policy persisting entries for name under dir. The
// directory is created if absent.
func NewDisk[V any](name, dir string, opts ...DiskOption[V]) (*DiskPolicy[V], error) {
	if name == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("name must not be empty"),
			"cache", "NewDisk", "validate name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapFatal(err, "cache", "NewDisk", "create cache directory")
	}
	p := &DiskPolicy[V]{
		name:       name,
		dir:        dir,
		serializer: JSONSerializer{},
		logger:     slog.Default(),
		files:      make(map[string]string),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *DiskPolicy[V]) path(key string) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s_%s.cache", p.name, hashKey(key)))
}

func (p *DiskPolicy[V]) Lookup(key string) (V, time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero V
	path := p.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return zero, 0, false
	}
	if p.expiration > 0 && p.now().Sub(info.ModTime()) >= p.expiration {
		if err := os.Remove(path); err != nil {
			p.logger.Warn("failed to remove stale cache file",
				"function", p.name, "path", path, "error", err)
		}
		delete(p.files, key)
		return zero, 0, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("failed to read cache file",
			"function", p.name, "path", path, "error", err)
		return zero, 0, false
	}
	var envelope diskEnvelope[V]
	if err := p.serializer.Unmarshal(data, &envelope); err != nil {
		p.logger.Warn("discarding corrupt cache file",
			"function", p.name, "path", path, "error", err)
		if err := os.Remove(path); err != nil {
			p.logger.Warn("failed to remove corrupt cache file",
				"function", p.name, "path", path, "error", err)
		}
		delete(p.files, key)
		return zero, 0, false
	}
	p.files[key] = path
	return envelope.Value, time.Duration(envelope.CostNanos), true
}

func (p *DiskPolicy[V]) Store(key string, value V, cost time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.serializer.Marshal(diskEnvelope[V]{
		CostNanos: int64(cost),
		Value:     value,
	})
	if err != nil {
		p.logger.Warn("failed to serialize cache entry",
			"function", p.name, "key", key, "error", err)
		return
	}
	path := p.path(key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		p.logger.Warn("failed to write cache file",
			"function", p.name, "path", path, "error", err)
		return
	}
	p.files[key] = path
}

// EvictIfNeeded is a no-op: staleness is handled lazily on lookup.
func (p *DiskPolicy[V]) EvictIfNeeded() {}

// Clear removes every file this policy has written or read during its
// lifetime. Files left by earlier processes are removed once observed via
// Lookup.
func (p *DiskPolicy[V]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, path := range p.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove cache file",
				"function", p.name, "path", path, "error", err)
		}
		delete(p.files, key)
	}
}

func (p *DiskPolicy[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

func (p *DiskPolicy[V]) Label() string { return "disk" }
