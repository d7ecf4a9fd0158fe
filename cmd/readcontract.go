package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/contract"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/spf13/cobra"
)

var readContractCmd = &cobra.Command{
	Use:   "read-contract",
	Short: "Lesson 3: read ERC-20 metadata and a balance",
	Long: `Reads name, symbol, decimals and total supply of TOKEN_ADDRESS, then the
balance of USER_ADDRESS, formatted with the token decimals.

Environment:
  RPC_URL         endpoint (required)
  TOKEN_ADDRESS   ERC-20 contract (required)
  USER_ADDRESS    holder to read the balance of (required)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rc, err := cfg.ReadToken()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.Lesson(3, "Read a contract"))

		client, err := chain.Dial(cmd.Context(), rc.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		return runReadContract(cmd.Context(), w, client, rc)
	},
}

func runReadContract(ctx context.Context, w io.Writer, r chain.Reader, rc config.ReadToken) error {
	tok := contract.NewToken(rc.Token, r)

	md, err := tok.Metadata(ctx)
	if err != nil {
		return err
	}
	bal, err := tok.BalanceOf(ctx, rc.User)
	if err != nil {
		return err
	}

	dec := int(md.Decimals)
	fmt.Fprintln(w, ui.KeyValueBlock(md.Name, []ui.KV{
		{Key: "Contract", Value: rc.Token.Hex()},
		{Key: "Symbol", Value: md.Symbol},
		{Key: "Decimals", Value: fmt.Sprintf("%d", md.Decimals)},
		{Key: "Total supply", Value: chain.FormatUnits(md.TotalSupply, dec) + " " + md.Symbol},
		{Key: "Holder", Value: rc.User.Hex()},
		{Key: "Balance", Value: chain.FormatUnits(bal, dec) + " " + md.Symbol},
	}))
	return nil
}
