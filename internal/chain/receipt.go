package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrTxReverted is returned with the receipt of a mined but failed transaction.
	ErrTxReverted = errors.New("transaction reverted")

	// ErrReceiptTimeout is returned when the transaction is not mined in time.
	ErrReceiptTimeout = errors.New("transaction not mined in time")
)

// WaitForReceipt polls every interval until hash is mined or ctx is done.
// A reverted transaction returns its receipt together with ErrTxReverted.
func WaitForReceipt(ctx context.Context, b Backend, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := b.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrTxReverted, hash.Hex())
			}
			return receipt, nil

		case err != nil && !errors.Is(err, ethereum.NotFound):
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrReceiptTimeout, hash.Hex(), ctx.Err())
			}
			return nil, fmt.Errorf("getting receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrReceiptTimeout, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
