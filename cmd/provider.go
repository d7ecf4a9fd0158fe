package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Lesson 1: read chain state through a JSON-RPC provider",
	Long: `Connects to RPC_URL and prints the current block, the network, the gas
price and, when ADDRESS is set, its balance.

Environment:
  RPC_URL   https:// or wss:// endpoint (required)
  ADDRESS   account to show the balance of (optional)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pc, err := cfg.Provider()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.Lesson(1, "Provider"))
		fmt.Fprintln(w, ui.Info("Connecting to "+pc.RPCURL+"…"))

		client, err := chain.Dial(cmd.Context(), pc.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		log.Debugw("connected", "url", pc.RPCURL)
		return runProvider(cmd.Context(), w, client, pc)
	},
}

func runProvider(ctx context.Context, w io.Writer, r chain.Reader, pc config.Provider) error {
	st, err := chain.Snapshot(ctx, r, chain.NewRegistry(), pc.Address)
	if err != nil {
		return err
	}

	gas := "unavailable"
	if st.Fees != nil && st.Fees.GasPrice != nil {
		gas = chain.FormatGwei(st.Fees.GasPrice) + " gwei"
	}

	pairs := []ui.KV{
		{Key: "Block", Value: fmt.Sprintf("%d", st.BlockNumber)},
		{Key: "Network", Value: fmt.Sprintf("%s (chainId: %s)", st.Network, st.ChainID)},
		{Key: "Latency", Value: st.Latency.Round(time.Millisecond).String()},
		{Key: "Gas price", Value: gas},
	}
	if st.Fees != nil && st.Fees.TipCap != nil {
		pairs = append(pairs, ui.KV{Key: "Priority fee", Value: chain.FormatGwei(st.Fees.TipCap) + " gwei"})
	}
	if pc.Address != nil {
		pairs = append(pairs, ui.KV{Key: "Balance", Value: balanceLine(*pc.Address, st)})
	}

	fmt.Fprintln(w, ui.KeyValueBlock("Chain state", pairs))
	if pc.Address == nil {
		fmt.Fprintln(w, ui.Hint("Set "+config.KeyAddress+"=0x… in .env to see a balance"))
	}
	return nil
}

func balanceLine(addr common.Address, st *chain.State) string {
	return fmt.Sprintf("%s ETH (%s)", chain.FormatEther(st.Balance), ui.TruncateAddr(addr.Hex()))
}
