package cmd

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// explorerFor returns override when set, else the explorer of the network
// with chainID, else "".
func explorerFor(reg *chain.Registry, chainID *big.Int, override string) string {
	if override != "" {
		return override
	}
	if n, err := reg.Lookup(chainID); err == nil {
		return n.Explorer
	}
	return ""
}

// printSent narrates a broadcast transaction.
func printSent(w io.Writer, sent *chain.Sent, explorer string) {
	fmt.Fprintln(w, ui.KeyValueBlock("Transaction sent", []ui.KV{
		{Key: "Hash", Value: sent.Tx.Hash().Hex()},
		{Key: "Nonce", Value: fmt.Sprintf("%d", sent.Tx.Nonce())},
		{Key: "Gas limit", Value: fmt.Sprintf("%d", sent.Gas)},
		{Key: "Max fee", Value: chain.FormatGwei(sent.MaxFee) + " gwei"},
		{Key: "Priority fee", Value: chain.FormatGwei(sent.Tip) + " gwei"},
	}))
	if link := chain.TxURL(explorer, sent.Tx.Hash().Hex()); link != "" {
		fmt.Fprintln(w, ui.Meta("  "+link))
	}
}

// awaitReceipt waits up to timeout for hash to be mined, with a spinner on a
// terminal and a single progress line otherwise.
func awaitReceipt(ctx context.Context, w io.Writer, b chain.Backend, hash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg := fmt.Sprintf("Waiting for %s to be mined…", ui.TruncateAddr(hash.Hex()))
	if isTerminal(w) {
		spin := ui.NewSpinner(w, msg)
		spin.Start()
		defer spin.Stop()
	} else {
		fmt.Fprintln(w, ui.Info(msg))
	}

	return chain.WaitForReceipt(ctx, b, hash, config.ReceiptPollEvery)
}

// printReceipt narrates a mined transaction.
func printReceipt(w io.Writer, r *types.Receipt) {
	fmt.Fprintln(w, ui.Success(fmt.Sprintf("Mined in block %s, gas used %d", r.BlockNumber, r.GasUsed)))
}
