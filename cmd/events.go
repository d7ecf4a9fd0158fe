package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/w3lessons/internal/chain"
	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/contract"
	"github.com/Mohsinsiddi/w3lessons/internal/logscan"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// liveBuffer is how many live transfers may queue while history prints.
const liveBuffer = 256

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Lesson 5: backfill and stream ERC-20 Transfer events",
	Long: `Subscribes to every Transfer of CONTRACT_ADDRESS over a websocket, then
backfills the transfers to RECEIVER_ADDRESS over the last LOG_LOOKBACK blocks.
The backfill queries LOG_STEP blocks at a time and halves the window whenever
the provider answers that a query returns too many results. Live transfers
keep streaming until Ctrl+C.

Environment:
  WS_URL            wss:// endpoint (or INFURA_ID for Infura mainnet)
  INFURA_ID         Infura project id, used when WS_URL is unset
  CONTRACT_ADDRESS  ERC-20 contract (required)
  RECEIVER_ADDRESS  recipient to backfill (required)
  LOG_STEP          initial window in blocks (default 250)
  LOG_LOOKBACK      blocks of history (default 2000)
  LOG_FAIL_FAST     stop at the first window that cannot be fetched (default false)
  EXPLORER_URL      explorer base for tx links (default: by chain id)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ec, err := cfg.Events()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, ui.Lesson(5, "Events"))

		client, err := chain.Dial(cmd.Context(), ec.WSURL)
		if err != nil {
			return err
		}
		defer client.Close()

		return runEvents(cmd.Context(), w, client, ec, log.Desugar())
	},
}

// eventsBackend is what the events lesson needs from a websocket client.
type eventsBackend interface {
	chain.Reader
	logscan.Querier
	contract.Subscriber
}

func runEvents(ctx context.Context, w io.Writer, c eventsBackend, ec config.Events, log *zap.Logger) error {
	tok := contract.NewToken(ec.Contract, c)
	name, err := tok.Name(ctx)
	if err != nil {
		return err
	}
	dec, err := tok.Decimals(ctx)
	if err != nil {
		return err
	}
	symbol, err := tok.Symbol(ctx)
	if err != nil {
		symbol = name
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("getting chain id: %w", err)
	}
	explorer := explorerFor(chain.NewRegistry(), chainID, ec.ExplorerURL)

	toRow := func(tr contract.Transfer) ui.TransferRow {
		return ui.TransferRow{
			Hash:     tr.TxHash.Hex(),
			From:     tr.From.Hex(),
			To:       tr.To.Hex(),
			Amount:   chain.FormatUnits(tr.Value, int(dec)),
			Symbol:   symbol,
			Block:    tr.Block,
			Link:     chain.TxURL(explorer, tr.TxHash.Hex()),
			Incoming: tr.To == ec.Receiver,
		}
	}

	fmt.Fprintln(w, ui.Step(1, fmt.Sprintf("Token: %s (%s), %d decimals", ui.Val(name), symbol, dec)))

	// Live first, so nothing mined during the backfill is missed.
	rows := make(chan ui.TransferRow, liveBuffer)
	sub, err := contract.WatchTransfers(ctx, c, contract.TransferFilter(ec.Contract, nil, nil), log, func(tr contract.Transfer) {
		select {
		case rows <- toRow(tr):
		default:
			log.Warn("live feed full, dropping transfer", zap.String("tx", tr.TxHash.Hex()))
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	fmt.Fprintln(w, ui.Step(2, "Subscribed to all Transfer events of "+ui.Addr(ec.Contract.Hex())))

	latest, err := c.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("getting block number: %w", err)
	}
	from := uint64(0)
	if latest > ec.Lookback {
		from = latest - ec.Lookback
	}
	fmt.Fprintln(w, ui.Step(3, fmt.Sprintf("Backfilling transfers to %s over blocks %d-%d", ui.Addr(ec.Receiver.Hex()), from, latest)))

	fetcher, err := logscan.New(c, ec.Step, logscan.WithFailFast(ec.FailFast), logscan.WithLogger(log))
	if err != nil {
		return err
	}
	logs, stats, err := fetcher.FetchWithStats(ctx, contract.TransferFilter(ec.Contract, nil, &ec.Receiver), from, latest)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("backfilling transfers: %w", err)
	}

	history, bad := contract.DecodeTransfers(logs)
	if bad > 0 {
		log.Warn("skipped undecodable logs", zap.Int("count", bad))
	}
	printHistory(w, history, toRow, stats)

	fmt.Fprintln(w, ui.Step(4, "Listening for new transfers (Ctrl+C to stop)"))
	if isTerminal(w) {
		stopped := make(chan error, 1)
		go func() {
			<-sub.Done()
			stopped <- sub.Err()
		}()
		return ui.RunFeed(ctx, fmt.Sprintf("Live · %s · %s", name, ui.TruncateAddr(ec.Contract.Hex())), rows, stopped)
	}
	return streamPlain(ctx, w, rows, sub)
}

func printHistory(w io.Writer, history []contract.Transfer, toRow func(contract.Transfer) ui.TransferRow, stats logscan.Stats) {
	if len(history) == 0 {
		fmt.Fprintln(w, ui.Meta("  No transfers in range."))
	}
	for _, tr := range history {
		fmt.Fprintln(w, "  "+ui.TransferLine(toRow(tr)))
	}

	summary := fmt.Sprintf("%d transfer(s), %d window(s), %d call(s)", len(history), stats.Windows, stats.Calls)
	if stats.Narrowed > 0 {
		summary += fmt.Sprintf(", narrowed %d time(s)", stats.Narrowed)
	}
	fmt.Fprintln(w, ui.Success(summary))
	for _, r := range stats.Skipped {
		fmt.Fprintln(w, ui.Warn(fmt.Sprintf("blocks %d-%d were skipped; history may be incomplete", r.From, r.To)))
	}
}

// streamPlain prints live transfers one per line until ctx is done or the
// subscription fails.
func streamPlain(ctx context.Context, w io.Writer, rows <-chan ui.TransferRow, sub *contract.Subscription) error {
	for {
		select {
		case r := <-rows:
			fmt.Fprintln(w, ui.TransferLine(r))
		case <-sub.Done():
			return sub.Err()
		case <-ctx.Done():
			return nil
		}
	}
}
