package model

import (
	"math/big"
	"testing"
)

func TestEventID(t *testing.T) {
	e := Event{TxHash: "0xabc", LogIndex: 3}
	if got := e.ID(); got != "0xabc:3" {
		t.Fatalf("ID() = %q, want %q", got, "0xabc:3")
	}
}

func TestRemainingAmount(t *testing.T) {
	tests := []struct {
		name    string
		goal    int64
		balance int64
		want    string
	}{
		{"partly funded", 1000, 400, "600"},
		{"exactly funded", 1000, 1000, "0"},
		{"overfunded floors at zero", 1000, 1500, "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingAmount(big.NewInt(tc.goal), big.NewInt(tc.balance))
			if got.String() != tc.want {
				t.Fatalf("remaining = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCampaignStateString(t *testing.T) {
	tests := []struct {
		state CampaignState
		want  string
	}{
		{StateActive, "active"},
		{StateSuccessful, "successful"},
		{StateFailed, "failed"},
		{CampaignState(9), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Fatalf("state %d = %q, want %q", tc.state, got, tc.want)
		}
	}
}
