package events

import (
	"testing"

	"campaignScope/internal/model"
)

func TestNextPageSlices(t *testing.T) {
	all := make([]model.Event, 25)
	for i := range all {
		all[i].BlockNumber = uint64(100 - i)
	}

	tests := []struct {
		page    int
		wantLen int
		hasMore bool
	}{
		{1, 10, true},
		{2, 10, true},
		{3, 5, false},
	}

	for _, tc := range tests {
		slice, hasMore := NextPage(all, tc.page, 10)
		if len(slice) != tc.wantLen {
			t.Fatalf("page %d: got %d events, want %d", tc.page, len(slice), tc.wantLen)
		}
		if hasMore != tc.hasMore {
			t.Fatalf("page %d: hasMore = %v, want %v", tc.page, hasMore, tc.hasMore)
		}
	}
}

func TestNextPageExactFit(t *testing.T) {
	all := make([]model.Event, 20)
	slice, hasMore := NextPage(all, 2, 10)
	if len(slice) != 10 || hasMore {
		t.Fatalf("got len %d hasMore %v, want 10 false", len(slice), hasMore)
	}
}

func TestNextPagePastEnd(t *testing.T) {
	all := make([]model.Event, 5)
	slice, hasMore := NextPage(all, 3, 10)
	if slice != nil || hasMore {
		t.Fatalf("expected empty slice past end, got %d hasMore %v", len(slice), hasMore)
	}
}

func TestNextPageInvalidArgs(t *testing.T) {
	all := make([]model.Event, 5)
	if slice, _ := NextPage(all, 0, 10); slice != nil {
		t.Fatalf("expected nil slice for page 0")
	}
	if slice, _ := NextPage(all, 1, 0); slice != nil {
		t.Fatalf("expected nil slice for zero page size")
	}
}
