package campaign

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"campaignScope/internal/chain"
)

type fakeCaller struct {
	results []chain.CallResult
	err     error
	calls   int
}

func (f *fakeCaller) BatchCallContract(_ context.Context, calls []chain.Call) ([]chain.CallResult, error) {
	f.calls = len(calls)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func packOutput(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	parsed, err := ReadABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	data, err := parsed.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return data
}

// campaignResults builds one campaign's full accessor result slice.
func campaignResults(t *testing.T, name string, goal, balance int64, tiers []tierResult, custom int64) []chain.CallResult {
	t.Helper()
	return []chain.CallResult{
		{Data: packOutput(t, "name", name)},
		{Data: packOutput(t, "description", "desc of "+name)},
		{Data: packOutput(t, "goal", big.NewInt(goal))},
		{Data: packOutput(t, "deadline", big.NewInt(1900000000))},
		{Data: packOutput(t, "getContractBalance", big.NewInt(balance))},
		{Data: packOutput(t, "state", uint8(0))},
		{Data: packOutput(t, "paused", false)},
		{Data: packOutput(t, "getTiers", tiers)},
		{Data: packOutput(t, "customBackersCount", big.NewInt(custom))},
	}
}

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	addrC = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func TestAggregatePositionalDecoding(t *testing.T) {
	tiers := []tierResult{
		{Name: "bronze", Amount: big.NewInt(100), Backers: big.NewInt(3)},
		{Name: "gold", Amount: big.NewInt(500), Backers: big.NewInt(2)},
	}

	var results []chain.CallResult
	results = append(results, campaignResults(t, "Alpha", 1000, 400, tiers, 4)...)
	results = append(results, campaignResults(t, "Beta", 2000, 2500, nil, 0)...)

	caller := &fakeCaller{results: results}
	aggregator, err := NewAggregator(caller, nil)
	if err != nil {
		t.Fatalf("build aggregator: %v", err)
	}

	records, err := aggregator.Aggregate(context.Background(), []common.Address{addrA, addrB})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if caller.calls != 2*len(accessors) {
		t.Fatalf("expected %d flattened calls, got %d", 2*len(accessors), caller.calls)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(records))
	}

	alpha := records[0]
	if alpha.Address != addrA.Hex() || alpha.Name != "Alpha" {
		t.Fatalf("positional mismatch: %+v", alpha)
	}
	if alpha.TierBackers != 5 || alpha.CustomBackers != 4 || alpha.TotalBackers != 9 {
		t.Fatalf("derived backers wrong: %+v", alpha)
	}
	if alpha.Remaining != "600" {
		t.Fatalf("remaining = %s, want 600", alpha.Remaining)
	}

	beta := records[1]
	if beta.Name != "Beta" {
		t.Fatalf("positional mismatch: %+v", beta)
	}
	if beta.Remaining != "0" {
		t.Fatalf("remaining must floor at zero, got %s", beta.Remaining)
	}
}

func TestAggregateDropsFailedEntity(t *testing.T) {
	var results []chain.CallResult
	results = append(results, campaignResults(t, "Alpha", 1000, 400, nil, 1)...)

	broken := campaignResults(t, "Broken", 500, 100, nil, 0)
	broken[3] = chain.CallResult{Err: errors.New("execution reverted")}
	results = append(results, broken...)

	results = append(results, campaignResults(t, "Gamma", 300, 50, nil, 2)...)

	caller := &fakeCaller{results: results}
	aggregator, err := NewAggregator(caller, nil)
	if err != nil {
		t.Fatalf("build aggregator: %v", err)
	}

	records, err := aggregator.Aggregate(context.Background(), []common.Address{addrA, addrB, addrC})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected failed campaign dropped, got %d records", len(records))
	}
	for _, record := range records {
		if record.Address == addrB.Hex() {
			t.Fatalf("failed campaign must be absent: %+v", record)
		}
	}
	// The entities after the failed slice decode from their own positions.
	if records[1].Name != "Gamma" {
		t.Fatalf("subsequent campaign corrupted: %+v", records[1])
	}
}

func TestDetailFailureIsFatal(t *testing.T) {
	broken := campaignResults(t, "Alpha", 1000, 400, nil, 0)
	broken[0] = chain.CallResult{Err: errors.New("execution reverted")}

	caller := &fakeCaller{results: broken}
	aggregator, err := NewAggregator(caller, nil)
	if err != nil {
		t.Fatalf("build aggregator: %v", err)
	}

	if _, err := aggregator.Detail(context.Background(), addrA); err == nil {
		t.Fatalf("expected hard error for detail fetch")
	}
}

func TestDetailDecodesAllFields(t *testing.T) {
	tiers := []tierResult{{Name: "silver", Amount: big.NewInt(200), Backers: big.NewInt(7)}}
	caller := &fakeCaller{results: campaignResults(t, "Alpha", 1000, 999, tiers, 3)}
	aggregator, err := NewAggregator(caller, nil)
	if err != nil {
		t.Fatalf("build aggregator: %v", err)
	}

	record, err := aggregator.Detail(context.Background(), addrA)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if record.Name != "Alpha" || record.Goal != "1000" || record.Balance != "999" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Remaining != "1" {
		t.Fatalf("remaining = %s, want 1", record.Remaining)
	}
	if len(record.Tiers) != 1 || record.Tiers[0].Backers != 7 {
		t.Fatalf("tiers not decoded: %+v", record.Tiers)
	}
}

func TestAggregateTransportErrorPropagates(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	aggregator, err := NewAggregator(caller, nil)
	if err != nil {
		t.Fatalf("build aggregator: %v", err)
	}

	if _, err := aggregator.Aggregate(context.Background(), []common.Address{addrA}); err == nil {
		t.Fatalf("expected transport error")
	}
}
