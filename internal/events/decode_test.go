package events

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"campaignScope/internal/model"
)

func TestDecodeFunded(t *testing.T) {
	dec := newTestDecoder(t)
	actor := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	lg := fundedLog(t, dec, actor, 1500, 77, 3)
	event, err := dec.Decode(lg, 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Kind != model.KindFunded {
		t.Fatalf("kind = %s", event.Kind)
	}
	if event.Actor != actor.Hex() {
		t.Fatalf("actor = %s, want %s", event.Actor, actor.Hex())
	}
	if event.Amount != "1500" {
		t.Fatalf("amount = %s, want 1500", event.Amount)
	}
	if event.BlockNumber != 77 || event.Timestamp != 9999 || event.LogIndex != 3 {
		t.Fatalf("unexpected positioning fields: %+v", event)
	}
}

func TestDecodeTierFunded(t *testing.T) {
	dec := newTestDecoder(t)
	parsed, err := CampaignEventsABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}

	backer := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	topic, _ := dec.Topic(model.KindTierFunded)
	data, err := parsed.Events["TierFunded"].Inputs.NonIndexed().Pack(big.NewInt(250))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	lg := types.Log{
		Address: testCampaign,
		Topics: []common.Hash{
			topic,
			common.BytesToHash(backer.Bytes()),
			common.BigToHash(big.NewInt(2)),
		},
		Data:        data,
		BlockNumber: 10,
		TxHash:      common.HexToHash("0x01"),
	}

	event, err := dec.Decode(lg, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.TierIndex == nil || *event.TierIndex != 2 {
		t.Fatalf("tier index = %v, want 2", event.TierIndex)
	}
	if event.Amount != "250" {
		t.Fatalf("amount = %s, want 250", event.Amount)
	}
}

func TestDecodeTransfer(t *testing.T) {
	dec := newTestDecoder(t)
	to := common.HexToAddress("0x00000000000000000000000000000000000000ab")
	topic, _ := dec.Topic(model.KindTransfer)

	lg := types.Log{
		Address: testCampaign,
		Topics: []common.Hash{
			topic,
			common.Hash{},
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(7)),
		},
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x02"),
	}

	event, err := dec.Decode(lg, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.TokenID != "7" {
		t.Fatalf("token id = %s, want 7", event.TokenID)
	}
	if event.Actor != to.Hex() {
		t.Fatalf("actor = %s, want recipient", event.Actor)
	}
}

func TestDecodeRejectsWrongTopicCount(t *testing.T) {
	dec := newTestDecoder(t)
	topic, _ := dec.Topic(model.KindFunded)

	lg := types.Log{
		Address: testCampaign,
		Topics:  []common.Hash{topic},
		TxHash:  common.HexToHash("0x03"),
	}

	_, err := dec.Decode(lg, 0)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeRejectsUnknownTopic(t *testing.T) {
	dec := newTestDecoder(t)

	lg := types.Log{
		Address: testCampaign,
		Topics:  []common.Hash{common.HexToHash("0xdead")},
	}
	if _, err := dec.Decode(lg, 0); err == nil {
		t.Fatalf("expected error for unknown topic0")
	}
}
