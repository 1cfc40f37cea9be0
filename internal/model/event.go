package model

import "strconv"

// EventKind identifies the semantic type of a normalized event.
type EventKind string

const (
	KindFunded     EventKind = "Funded"
	KindTierFunded EventKind = "TierFunded"
	KindWithdrawal EventKind = "Withdrawal"
	KindRefund     EventKind = "Refund"
	KindPurchase   EventKind = "TokensPurchased"
	KindVote       EventKind = "VoteCast"
	KindTransfer   EventKind = "Transfer"
)

// Event is the retrieval-strategy-independent representation of a chain log.
// Amounts are decimal strings so arbitrary precision survives JSON round-trips.
type Event struct {
	Kind        EventKind `json:"kind"`
	Campaign    string    `json:"campaign"`
	Actor       string    `json:"actor"`
	TierIndex   *uint64   `json:"tier_index,omitempty"`
	TokenID     string    `json:"token_id,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint64    `json:"log_index"`
	Timestamp   uint64    `json:"timestamp"`
}

// ID returns a stable per-event identifier used for deduplication.
func (e Event) ID() string {
	return e.TxHash + ":" + strconv.FormatUint(e.LogIndex, 10)
}
