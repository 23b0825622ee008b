package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"vodbench/internal/model"
	"vodbench/internal/util"
)

// SourceKey identifies a segmentation: the source file as it was on disk
// plus the parameters that shaped the segments.
type SourceKey struct {
	Path      string  `json:"path"`
	Size      int64   `json:"size"`
	ModTime   int64   `json:"mod_time"` // Unix nanoseconds.
	MinDur    float64 `json:"min_dur"`
	MaxDur    float64 `json:"max_dur"`
	Threshold float64 `json:"threshold"`
	// Derivation names the transform applied to Path before segmentation,
	// e.g. a preprocess command. Empty means the file itself.
	Derivation string `json:"derivation,omitempty"`
}

// KeyFor stats path and builds its SourceKey.
func KeyFor(path string, minDur, maxDur, threshold float64) (SourceKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return SourceKey{}, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return SourceKey{}, fmt.Errorf("%w: source %q: %v", model.ErrConfiguration, path, err)
	}
	return SourceKey{
		Path:      abs,
		Size:      fi.Size(),
		ModTime:   fi.ModTime().UnixNano(),
		MinDur:    minDur,
		MaxDur:    maxDur,
		Threshold: threshold,
	}, nil
}

func (k SourceKey) digest() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%g|%g|%g|%s", k.Path, k.Size, k.ModTime, k.MinDur, k.MaxDur, k.Threshold, k.Derivation)))
	return hex.EncodeToString(sum[:8])
}

type cacheEntry struct {
	Key      SourceKey       `json:"key"`
	Segments []model.Segment `json:"segments"`
}

// Cache memoizes segmentations per source. The zero value is not usable; use NewCache.
// A Cache with a directory also persists entries as JSON so later runs skip scene detection.
type Cache struct {
	mu      sync.Mutex
	dir     string
	entries map[SourceKey][]model.Segment
}

// NewCache returns a cache persisted under dir, or memory-only when dir is empty.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, entries: make(map[SourceKey][]model.Segment)}
}

// Get returns a copy of the cached segments for key.
func (c *Cache) Get(key SourceKey) ([]model.Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if segs, ok := c.entries[key]; ok {
		return slices.Clone(segs), true
	}
	if c.dir == "" {
		return nil, false
	}
	segs, err := c.load(key)
	if err != nil {
		return nil, false
	}
	c.entries[key] = segs
	return slices.Clone(segs), true
}

// Put stores segments for key, writing through to disk when persistent.
func (c *Cache) Put(key SourceKey, segs []model.Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = slices.Clone(segs)
	if c.dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(cacheEntry{Key: key, Segments: segs}, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(c.path(key), data)
}

// GetOrBuild returns cached segments or calls build and caches its result.
// hit reports whether the cache answered. A failed disk write is returned
// alongside the freshly built segments.
func (c *Cache) GetOrBuild(key SourceKey, build func() ([]model.Segment, error)) (segs []model.Segment, hit bool, err error) {
	if segs, ok := c.Get(key); ok {
		return segs, true, nil
	}
	segs, err = build()
	if err != nil {
		return nil, false, err
	}
	if perr := c.Put(key, segs); perr != nil {
		return segs, false, fmt.Errorf("persist segmentation: %w", perr)
	}
	return segs, false, nil
}

func (c *Cache) path(key SourceKey) string {
	return filepath.Join(c.dir, key.digest()+".json")
}

func (c *Cache) load(key SourceKey) ([]model.Segment, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, err
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Key != key {
		return nil, errors.New("cache entry key mismatch")
	}
	return e.Segments, nil
}
