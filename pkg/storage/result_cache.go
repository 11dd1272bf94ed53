// Package storage holds extraction results addressed by action identity.
package storage

import (
	"sync"

	"harvest-go/pkg/extractor"
)

// PageMatches groups the matches one action produced on one page.
type PageMatches struct {
	URL     string            `json:"url"`
	Matches []extractor.Match `json:"matches"`
}

// ResultCache is an in-memory store of extraction results keyed by action
// identity hash. Because the identity is order-independent, any caller that
// rebuilds a logically equal action addresses the same entry.
type ResultCache struct {
	mu      sync.RWMutex
	results map[uint64][]PageMatches
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		results: make(map[uint64][]PageMatches),
	}
}

// Put appends the matches one action produced on one page.
func (c *ResultCache) Put(identity uint64, url string, matches []extractor.Match) {
	if len(matches) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[identity] = append(c.results[identity], PageMatches{URL: url, Matches: matches})
}

// Get returns a copy of all per-page matches stored under an identity.
func (c *ResultCache) Get(identity uint64) []PageMatches {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stored, ok := c.results[identity]
	if !ok {
		return nil
	}
	out := make([]PageMatches, len(stored))
	copy(out, stored)
	return out
}

// Identities returns every identity with stored results.
func (c *ResultCache) Identities() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]uint64, 0, len(c.results))
	for id := range c.results {
		out = append(out, id)
	}
	return out
}

// Len returns the number of identities with stored results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Clear drops all stored results.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[uint64][]PageMatches)
}
