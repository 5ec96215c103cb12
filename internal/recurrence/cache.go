package recurrence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"golang.org/x/sync/singleflight"
)

// IndexCache keeps the index of the most recently seen mapping, keyed by a
// fingerprint of its content. Returned indexes are shared; do not modify them.
type IndexCache struct {
	mu          sync.RWMutex
	fingerprint string
	index       Index

	group singleflight.Group
	build func(v1.EventsByDate) Index
}

func NewIndexCache() *IndexCache {
	return &IndexCache{build: BuildIndex}
}

// Fingerprint hashes the canonical JSON of mapping. encoding/json sorts map
// keys, so equal mappings hash equally.
func Fingerprint(mapping v1.EventsByDate) string {
	data, err := json.Marshal(mapping)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the index for mapping, building it at most once per content
// version even under concurrent callers.
func (c *IndexCache) Get(mapping v1.EventsByDate) Index {
	key := Fingerprint(mapping)
	if key == "" {
		return c.build(mapping)
	}

	c.mu.RLock()
	if c.fingerprint == key {
		idx := c.index
		c.mu.RUnlock()
		return idx
	}
	c.mu.RUnlock()

	result, _, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		if c.fingerprint == key {
			idx := c.index
			c.mu.RUnlock()
			return idx, nil
		}
		c.mu.RUnlock()

		idx := c.build(mapping)

		c.mu.Lock()
		c.fingerprint = key
		c.index = idx
		c.mu.Unlock()

		slog.Debug("[Recurrence] Rebuilt index", "month_days", len(idx))
		return idx, nil
	})

	return result.(Index)
}
