package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Local development convenience; absent .env is not an error.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "presale",
		Short:        "Presale event analytics",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analytics HTTP API",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	addPipelineFlags(serveCmd)
	serveCmd.Flags().Duration("cache-ttl", 25*time.Second, "payload cache TTL")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Run the pipeline once and write the payload JSON",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("out", "-", "output path, - for stdout")
	addPipelineFlags(snapshotCmd)
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "https://api.etherscan.io/v2/api", "Etherscan API base URL")
	cmd.Flags().Uint64("chain-id", 1, "chain identifier")
	cmd.Flags().String("api-key", "", "Etherscan API key (ETHERSCAN_API_KEY)")
	cmd.Flags().String("contract", "", "presale contract address")
	cmd.Flags().String("event-topic", "", "event topic0 signature")
	cmd.Flags().String("wallets-file", "./data_check.txt", "owned-wallet allow-list path")
	cmd.Flags().Int("fetch-tries", 4, "log fetch attempt budget")
	cmd.Flags().Duration("fetch-timeout", 10*time.Second, "per-attempt HTTP timeout")
	cmd.Flags().Int("page-size", 0, "logs per page, 0 fetches the full range at once")
	cmd.Flags().Int("reconcile-tries", 3, "transaction fetch attempt budget")
	cmd.Flags().Int("reconcile-workers", 4, "concurrent transaction fetches")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
