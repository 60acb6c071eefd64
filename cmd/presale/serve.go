package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"presaleScope/internal/cache"
	"presaleScope/internal/config"
	"presaleScope/internal/etherscan"
	"presaleScope/internal/pipeline"
	"presaleScope/internal/server"
	"presaleScope/internal/wallets"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	owned, err := wallets.Load(cfg.WalletsFile)
	if err != nil {
		return err
	}

	if cfg.APIKey == "" {
		// Requests still answer with the configuration error; the server
		// boots so the condition is visible over HTTP, not just in logs.
		logger.Warn("ETHERSCAN_API_KEY is not set; requests will fail")
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

	p := pipeline.New(client, owned, cfg.ReconcileWorkers, logger, nil)
	payloadCache := cache.New(cfg.CacheTTL, nil)
	srv := server.New(p, payloadCache, cfg.APIKey != "", logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server start",
		zap.String("listen", cfg.ListenAddr),
		zap.String("contract", cfg.Contract),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Int("owned_wallets", owned.Len()),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("page_size", cfg.PageSize),
	)

	if err := srv.Run(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
