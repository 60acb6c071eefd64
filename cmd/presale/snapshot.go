package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"presaleScope/internal/config"
	"presaleScope/internal/etherscan"
	"presaleScope/internal/pipeline"
	"presaleScope/internal/wallets"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.APIKey == "" {
		return errors.New("Missing ETHERSCAN_API_KEY")
	}

	owned, err := wallets.Load(cfg.WalletsFile)
	if err != nil {
		return err
	}

	client := etherscan.NewClient(etherscan.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		ChainID:        cfg.ChainID,
		Contract:       cfg.Contract,
		EventTopic:     cfg.EventTopic,
		Tries:          cfg.FetchTries,
		ReconcileTries: cfg.ReconcileTries,
		Timeout:        cfg.FetchTimeout,
		PageSize:       cfg.PageSize,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("snapshot start",
		zap.String("contract", cfg.Contract),
		zap.Int("owned_wallets", owned.Len()),
		zap.String("out", outPath),
	)

	payload, err := pipeline.New(client, owned, cfg.ReconcileWorkers, logger, nil).Build(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
