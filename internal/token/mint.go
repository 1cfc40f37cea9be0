package token

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"campaignScope/internal/model"
)

// ErrNoMint means the receipt held no qualifying mint transfer.
var ErrNoMint = errors.New("no mint transfer in receipt")

// transferTopic is the standardized ERC-721 Transfer(address,address,uint256)
// signature hash. The parser depends only on this shape, not on any
// contract-specific "Minted" event, so it holds across token
// implementations.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var zeroAddress common.Address

// ParseMintReceipt scans receipt logs in order for the first Transfer
// emitted by the target contract whose sender is the zero address (the
// standardized mint signal) and returns the created token id and its
// recipient.
func ParseMintReceipt(logs []*types.Log, contract common.Address) (model.MintResult, error) {
	for _, lg := range logs {
		if lg == nil || lg.Address != contract {
			continue
		}
		if len(lg.Topics) == 0 || lg.Topics[0] != transferTopic {
			continue
		}
		// Signature + from + to + tokenId; anything else is an ERC-20
		// style transfer or a malformed log.
		if len(lg.Topics) != 4 {
			continue
		}

		from := common.BytesToAddress(lg.Topics[1].Bytes())
		if from != zeroAddress {
			continue
		}

		to := common.BytesToAddress(lg.Topics[2].Bytes())
		tokenID := new(big.Int).SetBytes(lg.Topics[3].Bytes())
		return model.MintResult{TokenID: tokenID.String(), To: to.Hex()}, nil
	}
	return model.MintResult{}, ErrNoMint
}
