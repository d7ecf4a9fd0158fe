package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrInsufficientFunds is returned when the sender cannot cover value + max fee.
	ErrInsufficientFunds = errors.New("insufficient funds for value + max fee")

	// ErrSelfTransfer is returned when a native transfer targets the sender.
	ErrSelfTransfer = errors.New("receiver is the sender")
)

// Signer signs transactions for a single account.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TxRequest describes a transaction to build.
type TxRequest struct {
	To          common.Address
	Value       *big.Int // nil means zero
	Data        []byte
	GasFallback uint64   // gas limit used when estimation fails; 0 = estimation must succeed
	Buffer      *big.Int // added to gas price + tip for the fee cap
}

// Sent is a broadcast transaction plus the fee parameters it was built with.
type Sent struct {
	Tx      *types.Transaction
	ChainID *big.Int
	Gas     uint64
	MaxFee  *big.Int
	Tip     *big.Int
}

// Send builds an EIP-1559 transaction for req, checks the sender can pay
// value + maxFee*gas, signs it with s and broadcasts it.
func Send(ctx context.Context, b Backend, s Signer, req TxRequest) (*Sent, error) {
	from := s.Address()
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	chainID, err := b.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	nonce, err := b.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	fees, err := GetFeeData(ctx, b)
	if err != nil {
		return nil, err
	}
	maxFee, err := fees.MaxFee(req.Buffer)
	if err != nil {
		return nil, err
	}
	tip := fees.Tip()

	to := req.To
	gas, err := b.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  req.Data,
	})
	if err != nil {
		if req.GasFallback == 0 {
			return nil, fmt.Errorf("estimating gas: %w", err)
		}
		gas = req.GasFallback
	}

	balance, err := b.BalanceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	need := new(big.Int).Mul(maxFee, new(big.Int).SetUint64(gas))
	need.Add(need, value)
	if balance.Cmp(need) < 0 {
		return nil, fmt.Errorf("%w: have %s ETH, need %s ETH", ErrInsufficientFunds, FormatEther(balance), FormatEther(need))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: maxFee,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := s.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	if err := b.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	return &Sent{Tx: signed, ChainID: chainID, Gas: gas, MaxFee: maxFee, Tip: tip}, nil
}

// SendValue transfers value wei of the native currency to to.
func SendValue(ctx context.Context, b Backend, s Signer, to common.Address, value, buffer *big.Int, gasFallback uint64) (*Sent, error) {
	if value == nil || value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: transfer value must be positive", ErrInvalidAmount)
	}
	if to == s.Address() {
		return nil, ErrSelfTransfer
	}
	return Send(ctx, b, s, TxRequest{
		To:          to,
		Value:       value,
		GasFallback: gasFallback,
		Buffer:      buffer,
	})
}
