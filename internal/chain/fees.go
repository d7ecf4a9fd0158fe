package chain

import (
	"context"
	"fmt"
	"math/big"
)

// FeeData is a snapshot of the node's fee suggestions. Either field may be
// nil when the node cannot answer (legacy chains have no tip suggestion).
type FeeData struct {
	GasPrice *big.Int // eth_gasPrice, used as the base-fee proxy
	TipCap   *big.Int // eth_maxPriorityFeePerGas
}

// GetFeeData asks the node for gas price and priority tip. Failures of either
// call are tolerated and leave the field nil; both failing is an error.
func GetFeeData(ctx context.Context, r Reader) (*FeeData, error) {
	fd := &FeeData{}

	gp, gpErr := r.SuggestGasPrice(ctx)
	if gpErr == nil {
		fd.GasPrice = gp
	}
	tip, tipErr := r.SuggestGasTipCap(ctx)
	if tipErr == nil {
		fd.TipCap = tip
	}

	if gpErr != nil && tipErr != nil {
		return nil, fmt.Errorf("fee data unavailable: %w", gpErr)
	}
	return fd, nil
}

// MaxFee returns gasPrice + tip + buffer, the fixed-buffer EIP-1559 fee cap.
// A missing tip counts as zero; a missing gas price is an error.
func (fd *FeeData) MaxFee(buffer *big.Int) (*big.Int, error) {
	if fd == nil || fd.GasPrice == nil {
		return nil, fmt.Errorf("gas price unavailable")
	}
	fee := new(big.Int).Set(fd.GasPrice)
	if fd.TipCap != nil {
		fee.Add(fee, fd.TipCap)
	}
	if buffer != nil {
		fee.Add(fee, buffer)
	}
	return fee, nil
}

// Tip returns the priority tip, zero when the node gave none.
func (fd *FeeData) Tip() *big.Int {
	if fd == nil || fd.TipCap == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(fd.TipCap)
}
