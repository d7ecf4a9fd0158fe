package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// State is what the provider lesson reports about a chain.
type State struct {
	BlockNumber uint64
	Latency     time.Duration // round trip of the block number call
	ChainID     *big.Int
	Network     string
	Fees        *FeeData // nil when the node gave no fee data
	Balance     *big.Int // nil unless an account was requested
}

// Snapshot reads block height, chain id, fee data and optionally the balance
// of account. Fee data is best effort; everything else must succeed.
func Snapshot(ctx context.Context, r Reader, reg *Registry, account *common.Address) (*State, error) {
	start := time.Now()
	block, err := r.BlockNumber(ctx)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("getting block number: %w", err)
	}

	id, err := r.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	st := &State{
		BlockNumber: block,
		Latency:     latency,
		ChainID:     id,
		Network:     reg.NameOf(id),
	}

	if fd, err := GetFeeData(ctx, r); err == nil {
		st.Fees = fd
	}

	if account != nil {
		bal, err := r.BalanceAt(ctx, *account, nil)
		if err != nil {
			return nil, fmt.Errorf("getting balance of %s: %w", account.Hex(), err)
		}
		st.Balance = bal
	}

	return st, nil
}
