package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientTokenBalance is returned when the sender holds fewer tokens
// than the transfer amount.
var ErrInsufficientTokenBalance = errors.New("insufficient token balance")

// TransferCalldata encodes transfer(to, amount).
func TransferCalldata(to common.Address, amount *big.Int) ([]byte, error) {
	data, err := ERC20.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("encoding transfer: %w", err)
	}
	return data, nil
}

// TransferOpts tunes the fee and gas of a token transfer.
type TransferOpts struct {
	Buffer      *big.Int // added to gas price + tip
	GasFallback uint64   // used when gas estimation fails
}

// Transfer checks that s holds at least amount tokens, then sends a signed
// transfer(to, amount) to the token through b.
func (t *Token) Transfer(ctx context.Context, b chain.Backend, s chain.Signer, to common.Address, amount *big.Int, opts TransferOpts) (*chain.Sent, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive", chain.ErrInvalidAmount)
	}

	bal, err := t.BalanceOf(ctx, s.Address())
	if err != nil {
		return nil, err
	}
	if bal.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s (base units)", ErrInsufficientTokenBalance, bal, amount)
	}

	data, err := TransferCalldata(to, amount)
	if err != nil {
		return nil, err
	}

	return chain.Send(ctx, b, s, chain.TxRequest{
		To:          t.address,
		Data:        data,
		GasFallback: opts.GasFallback,
		Buffer:      opts.Buffer,
	})
}
