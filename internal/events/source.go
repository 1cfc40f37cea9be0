package events

import (
	"context"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"campaignScope/internal/model"
)

// Query scopes one historical event retrieval.
type Query struct {
	Campaign common.Address
	Kind     model.EventKind
	// Account scopes participant queries ("all events touching X").
	// Zero value means entity scope.
	Account common.Address
	// Target caps how many events the chain-scan strategy keeps looking
	// for; other strategies return the full history regardless.
	Target int
	// Force bypasses the cache.
	Force bool
}

// CacheKey identifies the retrieval scope for caching and in-flight
// supersession.
func (q Query) CacheKey() string {
	key := strings.ToLower(q.Campaign.Hex()) + "|" + string(q.Kind)
	if q.Account != (common.Address{}) {
		key += "|" + strings.ToLower(q.Account.Hex())
	}
	return key
}

// Source produces the normalized event history for a query, newest first.
// Implementations are interchangeable; none leaks transport detail into
// the returned events.
type Source interface {
	Events(ctx context.Context, q Query) ([]model.Event, error)
	Name() string
}

// sortDescending orders events by block number, newest first, keeping
// source order for equal blocks.
func sortDescending(evts []model.Event) {
	sort.SliceStable(evts, func(i, j int) bool {
		return evts[i].BlockNumber > evts[j].BlockNumber
	})
}
