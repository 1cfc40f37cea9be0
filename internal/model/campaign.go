package model

import "math/big"

// CampaignState mirrors the on-chain campaign state enum.
type CampaignState uint8

const (
	StateActive CampaignState = iota
	StateSuccessful
	StateFailed
)

func (s CampaignState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSuccessful:
		return "successful"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tier is one funding tier of a campaign.
type Tier struct {
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Backers uint64 `json:"backers"`
}

// Campaign is the aggregated, display-ready view of one campaign contract.
// Goal, Balance and Remaining are wei amounts as decimal strings.
type Campaign struct {
	Address       string        `json:"address"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Goal          string        `json:"goal"`
	Balance       string        `json:"balance"`
	Remaining     string        `json:"remaining"`
	Deadline      uint64        `json:"deadline"`
	State         CampaignState `json:"state"`
	Paused        bool          `json:"paused"`
	Tiers         []Tier        `json:"tiers,omitempty"`
	TierBackers   uint64        `json:"tier_backers"`
	CustomBackers uint64        `json:"custom_backers"`
	TotalBackers  uint64        `json:"total_backers"`
}

// RemainingAmount computes goal - balance floored at zero.
func RemainingAmount(goal, balance *big.Int) *big.Int {
	if goal == nil || balance == nil {
		return new(big.Int)
	}
	if goal.Cmp(balance) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(goal, balance)
}

// MintResult identifies a token minted as a side effect of a write call.
type MintResult struct {
	TokenID string `json:"token_id"`
	To      string `json:"to"`
}
