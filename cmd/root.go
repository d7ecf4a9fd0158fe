package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/Mohsinsiddi/w3lessons/internal/logger"
	"github.com/Mohsinsiddi/w3lessons/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3lessons/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfg *config.Config
	log *zap.SugaredLogger
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3lessons",
	Short: "Five runnable lessons on talking to an EVM chain",
	Long: `w3lessons walks through the basics of an EVM client, one lesson per command:

  provider        read block height, network, gas price and a balance
  send-tx         send ETH with an EIP-1559 fee
  read-contract   read ERC-20 metadata and a holder balance
  write-contract  transfer ERC-20 tokens
  events          backfill and stream ERC-20 Transfer events

Every setting comes from the environment. A .env file in the working
directory is loaded first, then .env.local overrides it.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(".")
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		log, err = logger.New("w3lessons", cfg.String(config.KeyLogLevel, config.DefaultLogLevel))
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command. Ctrl+C cancels the running lesson.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		if errors.Is(err, config.ErrMissingEnv) {
			fmt.Fprintln(os.Stderr, ui.Hint("add the missing keys to .env in the current directory"))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		providerCmd,
		sendTxCmd,
		readContractCmd,
		writeContractCmd,
		eventsCmd,
	)
}
