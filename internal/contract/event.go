package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/crypto/sha3"
)

// TransferSig is the canonical signature of the ERC-20 Transfer event.
const TransferSig = "Transfer(address,address,uint256)"

// TransferTopic is topic0 of every ERC-20 Transfer log.
var TransferTopic = EventTopic(TransferSig)

// EventTopic returns the Keccak-256 hash of a canonical event signature.
func EventTopic(sig string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return common.BytesToHash(h.Sum(nil))
}

// Transfer is one decoded Transfer log.
type Transfer struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Block    uint64
	TxHash   common.Hash
	LogIndex uint
	Removed  bool
}

// TransferFilter selects Transfer logs of token. A nil from or to matches any
// address in that position.
func TransferFilter(token common.Address, from, to *common.Address) ethereum.FilterQuery {
	topics := [][]common.Hash{{TransferTopic}, nil, nil}
	if from != nil {
		topics[1] = []common.Hash{common.BytesToHash(from.Bytes())}
	}
	if to != nil {
		topics[2] = []common.Hash{common.BytesToHash(to.Bytes())}
	}
	return ethereum.FilterQuery{
		Addresses: []common.Address{token},
		Topics:    topics,
	}
}

// DecodeTransfer decodes an ERC-20 Transfer log. ERC-721 style logs with an
// indexed third argument are rejected.
func DecodeTransfer(l types.Log) (Transfer, error) {
	if len(l.Topics) != 3 || l.Topics[0] != TransferTopic {
		return Transfer{}, fmt.Errorf("log %s#%d is not an ERC-20 Transfer", l.TxHash.Hex(), l.Index)
	}

	vals, err := ERC20.Unpack("Transfer", l.Data)
	if err != nil {
		return Transfer{}, fmt.Errorf("decoding Transfer data: %w", err)
	}
	value, ok := vals[0].(*big.Int)
	if !ok {
		return Transfer{}, fmt.Errorf("decoding Transfer data: unexpected %T", vals[0])
	}

	return Transfer{
		From:     common.BytesToAddress(l.Topics[1].Bytes()),
		To:       common.BytesToAddress(l.Topics[2].Bytes()),
		Value:    value,
		Block:    l.BlockNumber,
		TxHash:   l.TxHash,
		LogIndex: l.Index,
		Removed:  l.Removed,
	}, nil
}

// DecodeTransfers decodes every log, skipping the ones that are not Transfers.
// The second result counts the skipped logs.
func DecodeTransfers(logs []types.Log) ([]Transfer, int) {
	out := make([]Transfer, 0, len(logs))
	skipped := 0
	for _, l := range logs {
		tr, err := DecodeTransfer(l)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, tr)
	}
	return out, skipped
}
