package storage

import (
	"fmt"
	"sync"
	"testing"

	"harvest-go/pkg/extractor"
)

func TestResultCache_PutGet(t *testing.T) {
	cache := NewResultCache()
	matches := []extractor.Match{{Tag: "a", Text: "One"}}

	cache.Put(42, "https://example.com/1", matches)
	cache.Put(42, "https://example.com/2", matches)

	got := cache.Get(42)
	if len(got) != 2 {
		t.Fatalf("expected 2 page entries, got %d", len(got))
	}
	if got[0].URL != "https://example.com/1" {
		t.Errorf("unexpected first URL: %s", got[0].URL)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 identity, got %d", cache.Len())
	}
}

func TestResultCache_EmptyMatchesIgnored(t *testing.T) {
	cache := NewResultCache()
	cache.Put(1, "https://example.com", nil)
	if cache.Get(1) != nil {
		t.Error("empty match sets must not create entries")
	}
}

func TestResultCache_MissingIdentity(t *testing.T) {
	cache := NewResultCache()
	if cache.Get(99) != nil {
		t.Error("expected nil for unknown identity")
	}
}

func TestResultCache_GetReturnsCopy(t *testing.T) {
	cache := NewResultCache()
	cache.Put(7, "https://example.com", []extractor.Match{{Tag: "a"}})

	first := cache.Get(7)
	first[0] = PageMatches{URL: "mutated"}

	if cache.Get(7)[0].URL != "https://example.com" {
		t.Error("mutating the returned slice must not affect the cache")
	}
}

func TestResultCache_Clear(t *testing.T) {
	cache := NewResultCache()
	cache.Put(1, "https://example.com", []extractor.Match{{Tag: "a"}})
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d identities", cache.Len())
	}
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	cache := NewResultCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/%d", n)
			cache.Put(uint64(n%5), url, []extractor.Match{{Tag: "a", Text: url}})
			cache.Get(uint64(n % 5))
		}(i)
	}
	wg.Wait()

	total := 0
	for _, id := range cache.Identities() {
		total += len(cache.Get(id))
	}
	if total != 50 {
		t.Errorf("expected 50 stored entries, got %d", total)
	}
}
