package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const tokenURIABIJSON = `[
  {
    "inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
    "name": "tokenURI",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	uriABIOnce sync.Once
	uriABI     abi.ABI
	uriABIErr  error
)

// ContractCaller is the single read call this package needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// FetchTokenURI reads tokenURI(tokenId) from the contract.
func FetchTokenURI(ctx context.Context, caller ContractCaller, contract common.Address, tokenID string) (string, error) {
	uriABIOnce.Do(func() {
		uriABI, uriABIErr = abi.JSON(strings.NewReader(tokenURIABIJSON))
	})
	if uriABIErr != nil {
		return "", uriABIErr
	}

	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token id: %s", tokenID)
	}

	data, err := uriABI.Pack("tokenURI", id)
	if err != nil {
		return "", fmt.Errorf("pack tokenURI: %w", err)
	}

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call tokenURI: %w", err)
	}

	values, err := uriABI.Unpack("tokenURI", out)
	if err != nil {
		return "", fmt.Errorf("unpack tokenURI: %w", err)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("unexpected tokenURI values: %d", len(values))
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", values[0])
	}
	return uri, nil
}
