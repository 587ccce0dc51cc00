// Package cache holds byte payloads for the lifetime of a scrape run.
package cache

import (
	"github.com/dgraph-io/ristretto/v2"
)

// Bytes is a size-bounded cache of byte slices keyed by string, costed by length.
type Bytes struct {
	impl *ristretto.Cache[string, []byte]
}

// NewBytes creates a cache holding at most maxBytes of payload.
func NewBytes(maxBytes int64) (*Bytes, error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e4, // ~10x the expected number of distinct images per run
		MaxCost:     maxBytes,
		BufferItems: 64,
		Cost: func(v []byte) int64 {
			return int64(len(v))
		},
	})
	if err != nil {
		return nil, err
	}
	return &Bytes{impl: impl}, nil
}

// Get retrieves a payload.
func (c *Bytes) Get(key string) ([]byte, bool) {
	return c.impl.Get(key)
}

// Set stores a payload. Admission is asynchronous; call Wait to make it visible.
func (c *Bytes) Set(key string, value []byte) bool {
	return c.impl.Set(key, value, 0)
}

// Wait blocks until pending Sets are applied.
func (c *Bytes) Wait() {
	c.impl.Wait()
}

// Close releases the cache's background goroutines.
func (c *Bytes) Close() {
	c.impl.Close()
}
