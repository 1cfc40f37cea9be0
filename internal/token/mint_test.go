package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	nftContract  = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	recipient    = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	someoneElse  = common.HexToAddress("0x0000000000000000000000000000000000000def")
	randomTopic0 = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
)

func mintLog(contract common.Address, from, to common.Address, tokenID int64) *types.Log {
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

func TestParseMintReceipt(t *testing.T) {
	logs := []*types.Log{
		{Address: nftContract, Topics: []common.Hash{randomTopic0}},
		mintLog(nftContract, common.Address{}, recipient, 7),
	}

	result, err := ParseMintReceipt(logs, nftContract)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TokenID != "7" {
		t.Fatalf("token id = %s, want 7", result.TokenID)
	}
	if result.To != recipient.Hex() {
		t.Fatalf("recipient = %s, want %s", result.To, recipient.Hex())
	}
}

func TestParseMintReceiptIgnoresOtherContracts(t *testing.T) {
	other := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	logs := []*types.Log{mintLog(other, common.Address{}, recipient, 7)}

	_, err := ParseMintReceipt(logs, nftContract)
	if !errors.Is(err, ErrNoMint) {
		t.Fatalf("expected ErrNoMint for foreign contract, got %v", err)
	}
}

func TestParseMintReceiptIgnoresPlainTransfers(t *testing.T) {
	logs := []*types.Log{mintLog(nftContract, someoneElse, recipient, 7)}

	_, err := ParseMintReceipt(logs, nftContract)
	if !errors.Is(err, ErrNoMint) {
		t.Fatalf("expected ErrNoMint for holder-to-holder transfer, got %v", err)
	}
}

func TestParseMintReceiptSkipsERC20StyleTransfers(t *testing.T) {
	// ERC-20 Transfer shares topic0 but carries only two indexed fields.
	logs := []*types.Log{{
		Address: nftContract,
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(common.Address{}.Bytes()),
			common.BytesToHash(recipient.Bytes()),
		},
	}}

	_, err := ParseMintReceipt(logs, nftContract)
	if !errors.Is(err, ErrNoMint) {
		t.Fatalf("expected ErrNoMint for 3-topic transfer, got %v", err)
	}
}

func TestParseMintReceiptFirstQualifyingWins(t *testing.T) {
	logs := []*types.Log{
		mintLog(nftContract, common.Address{}, recipient, 1),
		mintLog(nftContract, common.Address{}, someoneElse, 2),
	}

	result, err := ParseMintReceipt(logs, nftContract)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TokenID != "1" {
		t.Fatalf("expected first qualifying log, got token %s", result.TokenID)
	}
}
