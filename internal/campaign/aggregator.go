package campaign

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"campaignScope/internal/chain"
	"campaignScope/internal/model"
)

// accessors is the fixed, ordered list of read calls issued per campaign.
// Results decode positionally: campaign i owns results[i*K:(i+1)*K] where
// K = len(accessors). Reordering or extending this list without updating
// decodeSlice corrupts every field after the change.
var accessors = []string{
	"name",
	"description",
	"goal",
	"deadline",
	"getContractBalance",
	"state",
	"paused",
	"getTiers",
	"customBackersCount",
}

// BatchCaller is the subset of the chain client the aggregator uses.
type BatchCaller interface {
	BatchCallContract(ctx context.Context, calls []chain.Call) ([]chain.CallResult, error)
}

// Aggregator assembles display-ready campaign records from batched reads.
type Aggregator struct {
	caller   BatchCaller
	abi      abi.ABI
	calldata [][]byte
	logger   *zap.Logger
}

// NewAggregator builds an aggregator, pre-packing calldata for every
// accessor once.
func NewAggregator(caller BatchCaller, logger *zap.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := ReadABI()
	if err != nil {
		return nil, err
	}

	calldata := make([][]byte, len(accessors))
	for i, method := range accessors {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		calldata[i] = data
	}

	return &Aggregator{caller: caller, abi: parsed, calldata: calldata, logger: logger}, nil
}

// Aggregate fetches every campaign's full accessor set in one batched
// round trip. A campaign with any failed field is dropped from the output
// and logged with its failed field indices; it is never partially
// populated.
func (a *Aggregator) Aggregate(ctx context.Context, addrs []common.Address) ([]model.Campaign, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	k := len(accessors)
	calls := make([]chain.Call, 0, len(addrs)*k)
	for _, addr := range addrs {
		for _, data := range a.calldata {
			calls = append(calls, chain.Call{To: addr, Data: data})
		}
	}

	results, err := a.caller.BatchCallContract(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("batch read: %w", err)
	}
	if len(results) != len(calls) {
		return nil, fmt.Errorf("batch read returned %d results for %d calls", len(results), len(calls))
	}

	out := make([]model.Campaign, 0, len(addrs))
	for i, addr := range addrs {
		slice := results[i*k : (i+1)*k]
		record, failed := a.decodeSlice(addr, slice)
		if len(failed) > 0 {
			a.logger.Warn("campaign dropped from aggregation",
				zap.String("address", addr.Hex()),
				zap.Ints("failed_fields", failed))
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// Detail fetches one campaign; any failed field is a hard error rather
// than a silent omission.
func (a *Aggregator) Detail(ctx context.Context, addr common.Address) (model.Campaign, error) {
	calls := make([]chain.Call, len(a.calldata))
	for i, data := range a.calldata {
		calls[i] = chain.Call{To: addr, Data: data}
	}

	results, err := a.caller.BatchCallContract(ctx, calls)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("batch read: %w", err)
	}
	if len(results) != len(calls) {
		return model.Campaign{}, fmt.Errorf("batch read returned %d results for %d calls", len(results), len(calls))
	}

	record, failed := a.decodeSlice(addr, results)
	if len(failed) > 0 {
		return model.Campaign{}, fmt.Errorf("campaign %s: fields %v failed", addr.Hex(), failed)
	}
	return record, nil
}

type tierResult struct {
	Name    string
	Amount  *big.Int
	Backers *big.Int
}

// decodeSlice decodes one campaign's positional field slice. It returns
// the indices of every failed field so diagnostics name exactly what
// broke.
func (a *Aggregator) decodeSlice(addr common.Address, slice []chain.CallResult) (model.Campaign, []int) {
	var failed []int
	record := model.Campaign{Address: addr.Hex()}

	var (
		goal    *big.Int
		balance *big.Int
	)

	for i, method := range accessors {
		if slice[i].Err != nil {
			failed = append(failed, i)
			continue
		}

		values, err := a.abi.Unpack(method, slice[i].Data)
		if err != nil || len(values) != 1 {
			failed = append(failed, i)
			continue
		}

		switch method {
		case "name":
			record.Name, err = asString(values[0])
		case "description":
			record.Description, err = asString(values[0])
		case "goal":
			goal, err = asBig(values[0])
			if err == nil {
				record.Goal = goal.String()
			}
		case "deadline":
			var deadline *big.Int
			deadline, err = asBig(values[0])
			if err == nil {
				record.Deadline = deadline.Uint64()
			}
		case "getContractBalance":
			balance, err = asBig(values[0])
			if err == nil {
				record.Balance = balance.String()
			}
		case "state":
			var state uint8
			state, err = asUint8(values[0])
			if err == nil {
				record.State = model.CampaignState(state)
			}
		case "paused":
			var paused bool
			paused, err = asBool(values[0])
			if err == nil {
				record.Paused = paused
			}
		case "getTiers":
			var tiers []tierResult
			tiers, err = asTiers(values[0])
			if err == nil {
				record.Tiers = make([]model.Tier, 0, len(tiers))
				for _, tier := range tiers {
					backers := uint64(0)
					if tier.Backers != nil {
						backers = tier.Backers.Uint64()
					}
					record.TierBackers += backers
					record.Tiers = append(record.Tiers, model.Tier{
						Name:    tier.Name,
						Amount:  tier.Amount.String(),
						Backers: backers,
					})
				}
			}
		case "customBackersCount":
			var custom *big.Int
			custom, err = asBig(values[0])
			if err == nil {
				record.CustomBackers = custom.Uint64()
			}
		}
		if err != nil {
			failed = append(failed, i)
		}
	}

	if len(failed) > 0 {
		return model.Campaign{}, failed
	}

	record.TotalBackers = record.TierBackers + record.CustomBackers
	record.Remaining = model.RemainingAmount(goal, balance).String()
	return record, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asBig(v interface{}) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return nil, fmt.Errorf("expected big.Int, got %T", v)
	}
	return b, nil
}

func asUint8(v interface{}) (uint8, error) {
	u, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("expected uint8, got %T", v)
	}
	return u, nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func asTiers(v interface{}) ([]tierResult, error) {
	tiers, ok := abi.ConvertType(v, new([]tierResult)).(*[]tierResult)
	if !ok || tiers == nil {
		return nil, fmt.Errorf("expected tier array, got %T", v)
	}
	return *tiers, nil
}
