// Package credentials rotates a fixed pool of directory API credentials.
package credentials

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyPool is returned when no usable credential is configured.
var ErrEmptyPool = errors.New("credential pool is empty")

// Rotator hands out credentials in strict round-robin order.
// It is safe for concurrent use.
type Rotator struct {
	mu     sync.Mutex
	pool   []string
	cursor int
}

// NewRotator copies pool, dropping blank entries.
func NewRotator(pool []string) (*Rotator, error) {
	clean := make([]string, 0, len(pool))
	for _, c := range pool {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		clean = append(clean, c)
	}
	if len(clean) == 0 {
		return nil, ErrEmptyPool
	}
	return &Rotator{pool: clean}, nil
}

// Next returns the credential at the cursor and advances it.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.pool[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.pool)
	return c
}

// Len is the pool size.
func (r *Rotator) Len() int {
	return len(r.pool)
}
