package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"campaignScope/internal/model"
)

// Decoder turns raw logs into normalized events. Both the chain-scan and
// explorer strategies share it; the subgraph returns decoded rows already.
type Decoder struct {
	events map[model.EventKind]abi.Event
	topics map[common.Hash]model.EventKind
}

// NewDecoder builds a decoder over the local event fragments.
func NewDecoder() (*Decoder, error) {
	parsed, err := CampaignEventsABI()
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		events: make(map[model.EventKind]abi.Event),
		topics: make(map[common.Hash]model.EventKind),
	}
	for _, kind := range []model.EventKind{
		model.KindFunded,
		model.KindTierFunded,
		model.KindWithdrawal,
		model.KindRefund,
		model.KindPurchase,
		model.KindVote,
		model.KindTransfer,
	} {
		event, ok := parsed.Events[string(kind)]
		if !ok {
			return nil, fmt.Errorf("event %s missing from ABI", kind)
		}
		d.events[kind] = event
		d.topics[event.ID] = kind
	}
	return d, nil
}

// Topic returns the topic0 hash for an event kind.
func (d *Decoder) Topic(kind model.EventKind) (common.Hash, error) {
	event, ok := d.events[kind]
	if !ok {
		return common.Hash{}, fmt.Errorf("unknown event kind: %s", kind)
	}
	return event.ID, nil
}

// Decode converts one log into a normalized event. A malformed log is a
// DecodeError; it never yields a partially decoded event.
func (d *Decoder) Decode(lg types.Log, timestamp uint64) (model.Event, error) {
	if len(lg.Topics) == 0 {
		return model.Event{}, d.decodeErr(lg, fmt.Errorf("missing topics"))
	}
	kind, ok := d.topics[lg.Topics[0]]
	if !ok {
		return model.Event{}, d.decodeErr(lg, fmt.Errorf("unsupported topic0: %s", lg.Topics[0].Hex()))
	}

	event := d.events[kind]
	indexed := indexedArguments(event.Inputs)
	if len(lg.Topics) != len(indexed)+1 {
		return model.Event{}, d.decodeErr(lg, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(lg.Topics)))
	}

	out := model.Event{
		Kind:        kind,
		Campaign:    lg.Address.Hex(),
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash.Hex(),
		LogIndex:    uint64(lg.Index),
		Timestamp:   timestamp,
	}

	var err error
	switch kind {
	case model.KindFunded, model.KindRefund, model.KindWithdrawal:
		err = d.decodeActorAmount(event, lg, &out)
	case model.KindTierFunded:
		err = d.decodeTierFunded(event, lg, &out)
	case model.KindPurchase:
		err = d.decodePurchase(event, lg, &out)
	case model.KindVote:
		err = d.decodeVote(event, lg, &out)
	case model.KindTransfer:
		err = d.decodeTransfer(lg, &out)
	}
	if err != nil {
		return model.Event{}, d.decodeErr(lg, err)
	}
	return out, nil
}

func (d *Decoder) decodeErr(lg types.Log, err error) error {
	return &DecodeError{TxHash: lg.TxHash.Hex(), LogIndex: uint64(lg.Index), Err: err}
}

func (d *Decoder) decodeActorAmount(event abi.Event, lg types.Log, out *model.Event) error {
	var indexed struct {
		Actor common.Address
	}
	if err := parseIndexed(&indexed, event, lg.Topics); err != nil {
		return err
	}

	values, err := unpackNonIndexed(event, lg.Data)
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return err
	}

	out.Actor = indexed.Actor.Hex()
	out.Amount = amount.String()
	return nil
}

func (d *Decoder) decodeTierFunded(event abi.Event, lg types.Log, out *model.Event) error {
	var indexed struct {
		Backer    common.Address
		TierIndex *big.Int
	}
	if err := parseIndexed(&indexed, event, lg.Topics); err != nil {
		return err
	}

	values, err := unpackNonIndexed(event, lg.Data)
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return fmt.Errorf("unexpected TierFunded values: %d", len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return err
	}
	if !indexed.TierIndex.IsUint64() {
		return fmt.Errorf("tier index out of range: %s", indexed.TierIndex)
	}

	tier := indexed.TierIndex.Uint64()
	out.Actor = indexed.Backer.Hex()
	out.TierIndex = &tier
	out.Amount = amount.String()
	return nil
}

func (d *Decoder) decodePurchase(event abi.Event, lg types.Log, out *model.Event) error {
	var indexed struct {
		Buyer common.Address
	}
	if err := parseIndexed(&indexed, event, lg.Topics); err != nil {
		return err
	}

	values, err := unpackNonIndexed(event, lg.Data)
	if err != nil {
		return err
	}
	if len(values) != 2 {
		return fmt.Errorf("unexpected TokensPurchased values: %d", len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return err
	}

	out.Actor = indexed.Buyer.Hex()
	out.Amount = amount.String()
	return nil
}

func (d *Decoder) decodeVote(event abi.Event, lg types.Log, out *model.Event) error {
	var indexed struct {
		Voter      common.Address
		ProposalId *big.Int
	}
	if err := parseIndexed(&indexed, event, lg.Topics); err != nil {
		return err
	}

	values, err := unpackNonIndexed(event, lg.Data)
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return fmt.Errorf("unexpected VoteCast values: %d", len(values))
	}
	weight, err := asBigInt(values[0])
	if err != nil {
		return err
	}
	if !indexed.ProposalId.IsUint64() {
		return fmt.Errorf("proposal id out of range: %s", indexed.ProposalId)
	}

	proposal := indexed.ProposalId.Uint64()
	out.Actor = indexed.Voter.Hex()
	out.TierIndex = &proposal
	out.Amount = weight.String()
	return nil
}

func (d *Decoder) decodeTransfer(lg types.Log, out *model.Event) error {
	// All three Transfer fields are indexed; nothing lives in data.
	to := common.BytesToAddress(lg.Topics[2].Bytes())
	tokenID := new(big.Int).SetBytes(lg.Topics[3].Bytes())

	out.Actor = to.Hex()
	out.TokenID = tokenID.String()
	return nil
}

func parseIndexed(dst interface{}, event abi.Event, topics []common.Hash) error {
	if err := abi.ParseTopics(dst, indexedArguments(event.Inputs), topics[1:]); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, data []byte) ([]interface{}, error) {
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	b, ok := value.(*big.Int)
	if !ok || b == nil {
		return nil, fmt.Errorf("expected big.Int, got %T", value)
	}
	return b, nil
}
