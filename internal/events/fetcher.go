package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"campaignScope/internal/metrics"
	"campaignScope/internal/model"
)

type inflightHandle struct {
	cancel context.CancelFunc
}

// Fetcher ties a retrieval strategy to the shared cache and enforces the
// supersession discipline: at most one in-flight fetch per scope key, with
// a new fetch cancelling the prior one. A cancelled fetch never reaches
// its cache write, so a stale result cannot overwrite a fresher one.
type Fetcher struct {
	source Source
	cache  *Cache
	logger *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflightHandle
}

// NewFetcher builds a fetcher over a source and cache.
func NewFetcher(source Source, cache *Cache, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:   source,
		cache:    cache,
		logger:   logger,
		inflight: make(map[string]*inflightHandle),
	}
}

// Fetch returns the event history for q, serving from cache when fresh.
// A fetch superseded by a newer call for the same scope returns
// ErrCancelled; callers treat that as "no result", not a failure.
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]model.Event, error) {
	key := q.CacheKey()

	if !q.Force && f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			metrics.CacheHits()
			return cached, nil
		}
		metrics.CacheMisses()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	handle := &inflightHandle{cancel: cancel}

	f.mu.Lock()
	if prior, ok := f.inflight[key]; ok {
		prior.cancel()
	}
	f.inflight[key] = handle
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		if f.inflight[key] == handle {
			delete(f.inflight, key)
		}
		f.mu.Unlock()
		cancel()
	}()

	evts, err := f.source.Events(fetchCtx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// Superseded, not failed: the call that cancelled us owns
			// the scope now.
			return nil, ErrCancelled
		}
		f.logger.Warn("event fetch failed",
			zap.String("strategy", f.source.Name()),
			zap.String("scope", key),
			zap.Error(err))
		return nil, err
	}

	if fetchCtx.Err() != nil {
		return nil, ErrCancelled
	}

	if f.cache != nil {
		f.cache.Put(key, evts)
	}
	return evts, nil
}
