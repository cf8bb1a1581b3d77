package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ", "de")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if !strings.HasPrefix(k, "yta:") {
			t.Errorf("expected yta: prefix, got %q", k)
		}
	})
}

func TestCacheGetSetTranscript(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	ctx := context.Background()
	en := []string{"en"}

	if _, ok := CacheGetTranscript(ctx, "vid00000001", en); ok {
		t.Fatal("expected cache miss on empty cache")
	}

	CacheSetTranscript(ctx, "vid00000001", en, "hello world")

	got, ok := CacheGetTranscript(ctx, "vid00000001", en)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}

	// Language preference is part of the key.
	if _, ok := CacheGetTranscript(ctx, "vid00000001", []string{"de", "en"}); ok {
		t.Error("expected miss for a different language list")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", time.Millisecond, 100, 5*time.Minute)
	ctx := context.Background()

	CacheSetTranscript(ctx, "vid00000002", nil, "temp")
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGetTranscript(ctx, "vid00000002", nil); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := range 5 {
		CacheSetTranscript(ctx, fmt.Sprintf("vid-%07d", i), nil, fmt.Sprintf("v%d", i))
	}

	count := 0
	transcriptCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)
	ctx := context.Background()

	CacheGetTranscript(ctx, "vid00000003", nil)
	if _, misses := CacheStats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSetTranscript(ctx, "vid00000003", nil, "x")
	CacheGetTranscript(ctx, "vid00000003", nil)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
