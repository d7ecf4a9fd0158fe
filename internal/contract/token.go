// Package contract binds the ERC-20 calls and the Transfer event the lessons use.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ErrNoContract is returned when a call comes back empty, which is what a node
// answers for an address without code.
var ErrNoContract = errors.New("no contract code at address")

// Token is a read binding to one ERC-20 contract.
type Token struct {
	address common.Address
	r       chain.Reader
}

// Metadata is the descriptive state of a token.
type Metadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// NewToken binds address through r.
func NewToken(address common.Address, r chain.Reader) *Token {
	return &Token{address: address, r: r}
}

// Name calls name().
func (t *Token) Name(ctx context.Context) (string, error) {
	var out string
	err := t.call(ctx, &out, "name")
	return out, err
}

// Symbol calls symbol().
func (t *Token) Symbol(ctx context.Context) (string, error) {
	var out string
	err := t.call(ctx, &out, "symbol")
	return out, err
}

// Decimals calls decimals().
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var out uint8
	err := t.call(ctx, &out, "decimals")
	return out, err
}

// TotalSupply calls totalSupply().
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	out := new(big.Int)
	if err := t.call(ctx, &out, "totalSupply"); err != nil {
		return nil, err
	}
	return out, nil
}

// BalanceOf calls balanceOf(account).
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out := new(big.Int)
	if err := t.call(ctx, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return out, nil
}

// Metadata reads name, symbol, decimals and total supply concurrently.
func (t *Token) Metadata(ctx context.Context) (*Metadata, error) {
	var md Metadata
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { md.Name, err = t.Name(gctx); return })
	g.Go(func() (err error) { md.Symbol, err = t.Symbol(gctx); return })
	g.Go(func() (err error) { md.Decimals, err = t.Decimals(gctx); return })
	g.Go(func() (err error) { md.TotalSupply, err = t.TotalSupply(gctx); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &md, nil
}

// call packs method(args), runs eth_call against the token and unpacks the
// single return value into out.
func (t *Token) call(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	data, err := ERC20.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}

	res, err := t.r.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("calling %s on %s: %w", method, t.address.Hex(), err)
	}
	if len(res) == 0 {
		return fmt.Errorf("calling %s on %s: %w", method, t.address.Hex(), ErrNoContract)
	}

	if err := ERC20.UnpackIntoInterface(out, method, res); err != nil {
		return fmt.Errorf("decoding %s: %w", method, err)
	}
	return nil
}
