package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/minio/blake2b-simd"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/services/metrics"
)

type Operation string

const (
	OperationVariants Operation = "results_by_variants"
	OperationGene     Operation = "results_by_gene"
	OperationRange    Operation = "results_by_range"

	entrySuffix = ".json"
)

type (
	// DiskCache stores serialized results as one file per key. Entries are
	// keyed on the identities of every resource the result was built from, so
	// replacing a file on disk makes its old entries unreachable.
	//
	// Nothing in here returns an error: a broken cache only means more misses.
	DiskCache struct {
		dir     string
		maxSize int64
		metrics *metrics.Metrics

		// serializes evictions; reads and writes go through atomic renames
		mu sync.Mutex
	}

	entry struct {
		path    string
		size    int64
		modTime time.Time
	}
)

// New returns nil when caching is disabled. A nil *DiskCache misses on every
// Get and ignores every Set.
func New(cfg *models.Config, m *metrics.Metrics) *DiskCache {
	if !cfg.Cache.Enabled {
		log.Info("result cache disabled")
		return nil
	}
	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		log.Errorf("cannot create cache directory %s, caching disabled: %v", cfg.Cache.Dir, err)
		return nil
	}

	log.Infof("result cache at %s, budget %d bytes", cfg.Cache.Dir, cfg.Cache.MaxSizeBytes)
	return &DiskCache{
		dir:     cfg.Cache.Dir,
		maxSize: cfg.Cache.MaxSizeBytes,
		metrics: m,
	}
}

// Key hashes the operation, the identities of the consumed resources and the
// serialized arguments.
func Key(op Operation, identities []string, args ...interface{}) (string, error) {
	serialized, err := json.Marshal(args)
	if err != nil {
		return "", err
	}

	h := blake2b.New256()
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(identities, "\n")))
	h.Write([]byte{0})
	h.Write(serialized)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the stored payload and marks the entry as recently used.
func (c *DiskCache) Get(op Operation, identities []string, args ...interface{}) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	path, ok := c.path(op, identities, args)
	if !ok {
		return nil, false
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debugf("cache read %s: %v", path, err)
		}
		c.metrics.CacheLookup(string(op), false)
		return nil, false
	}

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		log.Debugf("cache touch %s: %v", path, err)
	}
	c.metrics.CacheLookup(string(op), true)
	return payload, true
}

// Set writes the payload and then evicts least recently used entries until
// the cache fits its budget again.
func (c *DiskCache) Set(op Operation, identities []string, payload []byte, args ...interface{}) {
	if c == nil {
		return
	}

	path, ok := c.path(op, identities, args)
	if !ok {
		return
	}

	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		log.Debugf("cache temp file: %v", err)
		return
	}
	if _, err := tmp.Write(payload); err != nil {
		log.Debugf("cache write %s: %v", tmp.Name(), err)
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		log.Debugf("cache close %s: %v", tmp.Name(), err)
		os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		log.Debugf("cache rename %s: %v", path, err)
		os.Remove(tmp.Name())
		return
	}

	c.EnsureSize()
}

// GetJSON decodes a hit into out.
func (c *DiskCache) GetJSON(op Operation, identities []string, out interface{}, args ...interface{}) bool {
	payload, ok := c.Get(op, identities, args...)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Debugf("cache decode %s: %v", op, err)
		return false
	}
	return true
}

func (c *DiskCache) SetJSON(op Operation, identities []string, value interface{}, args ...interface{}) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		log.Debugf("cache encode %s: %v", op, err)
		return
	}
	c.Set(op, identities, payload, args...)
}

// Size is the total size of the stored entries in bytes.
func (c *DiskCache) Size() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, e := range c.entries() {
		total += e.size
	}
	return total
}

// EnsureSize removes entries, oldest access first, until the total size is
// within the budget.
func (c *DiskCache) EnsureSize() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.entries()
	var total int64
	for _, e := range entries {
		total += e.size
	}
	if total <= c.maxSize {
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	evicted := 0
	for _, e := range entries {
		if total <= c.maxSize {
			break
		}
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			log.Debugf("cache evict %s: %v", e.path, err)
			continue
		}
		total -= e.size
		evicted++
	}
	c.metrics.CacheEvicted(evicted)
	log.Debugf("evicted %d cache entries, %d bytes left", evicted, total)
}

func (c *DiskCache) path(op Operation, identities []string, args []interface{}) (string, bool) {
	key, err := Key(op, identities, args...)
	if err != nil {
		log.Debugf("cache key %s: %v", op, err)
		return "", false
	}
	return filepath.Join(c.dir, key+entrySuffix), true
}

func (c *DiskCache) entries() []entry {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		log.Debugf("cache list %s: %v", c.dir, err)
		return nil
	}

	out := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entrySuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed in the meantime
			continue
		}
		out = append(out, entry{
			path:    filepath.Join(c.dir, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return out
}
