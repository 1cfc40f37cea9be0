package events

import (
	"testing"
	"time"

	"campaignScope/internal/model"
)

func TestCacheHitWithinTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewCache(45 * time.Second)
	cache.now = func() time.Time { return now }

	evts := []model.Event{{TxHash: "0xaa", BlockNumber: 7}}
	cache.Put("key", evts)

	now = now.Add(44 * time.Second)
	got, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected hit before TTL")
	}
	if len(got) != 1 || got[0].TxHash != "0xaa" {
		t.Fatalf("unexpected cached events: %+v", got)
	}
}

func TestCacheMissAtTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewCache(45 * time.Second)
	cache.now = func() time.Time { return now }

	cache.Put("key", []model.Event{{TxHash: "0xaa"}})

	now = now.Add(45 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected miss at exactly TTL")
	}
}

func TestCacheMissUnknownKey(t *testing.T) {
	cache := NewCache(0)
	if _, ok := cache.Get("absent"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestCachePutSupersedes(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Put("key", []model.Event{{TxHash: "0xaa"}})
	cache.Put("key", []model.Event{{TxHash: "0xbb"}})

	got, ok := cache.Get("key")
	if !ok || len(got) != 1 || got[0].TxHash != "0xbb" {
		t.Fatalf("expected refreshed entry, got %+v", got)
	}
}
