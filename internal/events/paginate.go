package events

import "campaignScope/internal/model"

// NextPage slices page number `page` (1-based) out of a fully fetched,
// sorted event list. The caller appends the returned slice to what is
// already visible, so the visible window stays [0, page*pageSize).
// hasMore reports whether pages remain past that window. The function is
// pure pagination state; it never re-fetches.
func NextPage(all []model.Event, page, pageSize int) ([]model.Event, bool) {
	if page < 1 || pageSize <= 0 {
		return nil, len(all) > 0
	}

	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, false
	}

	end := page * pageSize
	if end >= len(all) {
		return all[start:], false
	}
	return all[start:end], true
}
