package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/contract"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/Mohsinsiddi/w3lessons/internal/wallet"
	"github.com/spf13/cobra"
)

var writeContractCmd = &cobra.Command{
	Use:   "write-contract",
	Short: "Lesson 4: transfer ERC-20 tokens",
	Long: `Transfers AMOUNT tokens of TOKEN_ADDRESS from PRIVATE_KEY to RECEIVER after
checking the sender balance, then waits for the receipt.

Environment:
  RPC_URL               endpoint (required)
  PRIVATE_KEY           hex key of the sender (required)
  TOKEN_ADDRESS         ERC-20 contract (required)
  RECEIVER              recipient address (required)
  AMOUNT                tokens to send, e.g. 1.5 (required)
  PRIORITY_BUFFER_GWEI  extra gwei on the fee cap (default 1)
  TX_TIMEOUT            how long to wait for the receipt (default 3m)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		wc, err := cfg.WriteToken()
		if err != nil {
			return err
		}
		signer, err := wallet.FromHex(wc.PrivateKey)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.Lesson(4, "Write to a contract"))

		client, err := chain.Dial(cmd.Context(), wc.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		return runWriteContract(cmd.Context(), w, client, signer, wc)
	},
}

func runWriteContract(ctx context.Context, w io.Writer, b chain.Backend, s chain.Signer, wc config.WriteToken) error {
	tok := contract.NewToken(wc.Token, b)

	dec, err := tok.Decimals(ctx)
	if err != nil {
		return err
	}
	symbol, err := tok.Symbol(ctx)
	if err != nil {
		symbol = "tokens"
	}

	amount, err := chain.ParseUnits(wc.Amount, int(dec))
	if err != nil {
		return fmt.Errorf("%s: %w", config.KeyAmount, err)
	}

	bal, err := tok.BalanceOf(ctx, s.Address())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ui.Step(1, fmt.Sprintf("Balance of %s: %s %s", ui.Addr(s.Address().Hex()), ui.Val(chain.FormatUnits(bal, int(dec))), symbol)))
	fmt.Fprintln(w, ui.Step(2, fmt.Sprintf("Transferring %s %s to %s", ui.Val(chain.FormatUnits(amount, int(dec))), symbol, ui.Addr(wc.Receiver.Hex()))))

	sent, err := tok.Transfer(ctx, b, s, wc.Receiver, amount, contract.TransferOpts{
		Buffer:      wc.PriorityBuffer,
		GasFallback: config.GasLimitERC20Transfer,
	})
	if err != nil {
		return err
	}
	printSent(w, sent, explorerFor(chain.NewRegistry(), sent.ChainID, ""))

	receipt, err := awaitReceipt(ctx, w, b, sent.Tx.Hash(), wc.Timeout)
	if err != nil {
		return err
	}
	printReceipt(w, receipt)
	return nil
}
