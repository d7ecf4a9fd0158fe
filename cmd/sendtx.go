package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/Mohsinsiddi/w3lessons/internal/wallet"
	"github.com/spf13/cobra"
)

var sendTxCmd = &cobra.Command{
	Use:   "send-tx",
	Short: "Lesson 2: send ETH with an EIP-1559 fee",
	Long: `Signs and sends SEND_AMOUNT ETH from PRIVATE_KEY to RECEIVER.

The fee cap is gas price + suggested priority fee + a fixed buffer. The lesson
refuses to send when the balance cannot cover value + fee cap * gas, or when
RECEIVER is the sender, then waits for the receipt.

Environment:
  RPC_URL               endpoint (required)
  PRIVATE_KEY           hex key of the sender (required)
  RECEIVER              recipient address (required)
  SEND_AMOUNT           ETH to send (default 0.01)
  PRIORITY_BUFFER_GWEI  extra gwei on the fee cap (default 1)
  TX_TIMEOUT            how long to wait for the receipt (default 3m)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := cfg.SendTx()
		if err != nil {
			return err
		}
		signer, err := wallet.FromHex(sc.PrivateKey)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.Lesson(2, "Send a transaction"))

		client, err := chain.Dial(cmd.Context(), sc.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		return runSendTx(cmd.Context(), w, client, signer, sc)
	},
}

func runSendTx(ctx context.Context, w io.Writer, b chain.Backend, s chain.Signer, sc config.SendTx) error {
	value, err := chain.ParseEther(sc.Amount)
	if err != nil {
		return fmt.Errorf("%s: %w", config.KeySendAmount, err)
	}

	reg := chain.NewRegistry()
	chainID, err := b.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("getting chain id: %w", err)
	}
	fmt.Fprintln(w, ui.Step(1, "Network: "+ui.ChainName(reg.NameOf(chainID))+ui.Meta(fmt.Sprintf(" (chainId: %s)", chainID))))

	from := s.Address()
	before, err := b.BalanceAt(ctx, from, nil)
	if err != nil {
		return fmt.Errorf("getting balance: %w", err)
	}
	fmt.Fprintln(w, ui.Step(2, fmt.Sprintf("Balance of %s before: %s ETH", ui.Addr(from.Hex()), ui.Val(chain.FormatEther(before)))))
	receiverBefore, err := b.BalanceAt(ctx, sc.Receiver, nil)
	if err != nil {
		return fmt.Errorf("getting balance: %w", err)
	}

	fmt.Fprintln(w, ui.Step(3, fmt.Sprintf("Sending %s ETH to %s", ui.Val(chain.FormatEther(value)), ui.Addr(sc.Receiver.Hex()))))
	sent, err := chain.SendValue(ctx, b, s, sc.Receiver, value, sc.PriorityBuffer, config.GasLimitETHTransfer)
	if err != nil {
		return err
	}
	printSent(w, sent, explorerFor(reg, chainID, ""))

	receipt, err := awaitReceipt(ctx, w, b, sent.Tx.Hash(), sc.Timeout)
	if err != nil {
		return err
	}
	printReceipt(w, receipt)

	after, err := b.BalanceAt(ctx, from, nil)
	if err != nil {
		return fmt.Errorf("getting balance: %w", err)
	}
	fmt.Fprintln(w, ui.Step(4, fmt.Sprintf("Balance after: %s ETH", ui.Val(chain.FormatEther(after)))))
	receiverAfter, err := b.BalanceAt(ctx, sc.Receiver, nil)
	if err != nil {
		return fmt.Errorf("getting balance: %w", err)
	}

	tbl := ui.NewTable(ui.Column{Title: "Account", Width: 20}, ui.Column{Title: "Before (ETH)", Width: 22}, ui.Column{Title: "After (ETH)", Width: 22})
	tbl.AddRow("sender "+ui.TruncateAddr(from.Hex()), chain.FormatEther(before), chain.FormatEther(after))
	tbl.AddRow("recv "+ui.TruncateAddr(sc.Receiver.Hex()), chain.FormatEther(receiverBefore), chain.FormatEther(receiverAfter))
	fmt.Fprint(w, tbl.Render())
	return nil
}
