package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"presaleScope/internal/aggregate"
	"presaleScope/internal/decode"
	"presaleScope/internal/etherscan"
	"presaleScope/internal/model"
	"presaleScope/internal/wallets"
)

// Pipeline runs the full fetch → decode → aggregate → reconcile pass and
// assembles one payload. It holds no per-run state and is safe to reuse.
type Pipeline struct {
	client  *etherscan.Client
	owned   wallets.Set
	workers int
	logger  *zap.Logger
	clock   func() time.Time
}

// New builds a pipeline. A nil clock uses time.Now.
func New(client *etherscan.Client, owned wallets.Set, workers int, logger *zap.Logger, clock func() time.Time) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		client:  client,
		owned:   owned,
		workers: workers,
		logger:  logger,
		clock:   clock,
	}
}

// Build produces a fully assembled payload or an error; there are no
// partial results.
func (p *Pipeline) Build(ctx context.Context) (*model.Payload, error) {
	logs, err := p.client.FetchLogs(ctx)
	if err != nil {
		return nil, err
	}

	agg := aggregate.NewAggregator(p.owned, p.logger)
	dropped := 0
	for _, raw := range logs {
		event, ok := decode.ParseEvent(raw)
		if !ok {
			dropped++
			continue
		}
		agg.Add(event)
	}

	reconciler := aggregate.Reconciler{
		Fetcher: p.client,
		Workers: p.workers,
		Logger:  p.logger,
	}
	if err := reconciler.Run(ctx, agg); err != nil {
		return nil, err
	}

	payload := agg.Finalize(p.clock())

	p.logger.Info("pipeline complete",
		zap.Int("logs", len(logs)),
		zap.Int("events", agg.TotalEvents()),
		zap.Int("dropped", dropped),
		zap.Int("wallets", payload.UniqueWallets),
	)
	return payload, nil
}
