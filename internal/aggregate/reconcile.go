package aggregate

import (
	"context"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"presaleScope/internal/etherscan"
)

const defaultReconcileWorkers = 4

// TxFetcher loads transaction details for native-transfer reconciliation.
type TxFetcher interface {
	FetchTransaction(ctx context.Context, txHash string) (*etherscan.Transaction, error)
}

// Reconciler attributes native-currency transfers to owned wallets whose
// decoded USD is zero. Each distinct transaction is fetched once, over a
// bounded worker pool; chronological "last" selection happens after all
// fetches return. USD totals are never touched.
type Reconciler struct {
	Fetcher TxFetcher
	Workers int
	Logger  *zap.Logger
}

// Run reconciles all owned wallets in the aggregator.
func (r *Reconciler) Run(ctx context.Context, agg *Aggregator) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = defaultReconcileWorkers
	}

	hashes := pendingZeroUSDHashes(agg)
	if len(hashes) == 0 {
		return nil
	}

	memo := make(map[string]*etherscan.Transaction, len(hashes))
	var mu sync.Mutex
	var firstErr error

	pool := pond.NewPool(workers)
	for _, h := range hashes {
		hash := h
		pool.Submit(func() {
			tx, err := r.Fetcher.FetchTransaction(ctx, hash)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			memo[hash] = tx
		})
	}
	pool.StopAndWait()

	if firstErr != nil {
		return firstErr
	}

	fetched := len(memo)
	attributed := 0
	for _, addr := range agg.order {
		w := agg.states[addr]
		if !w.isOurs || len(w.pending) == 0 {
			continue
		}

		refs := make([]txRef, len(w.pending))
		copy(refs, w.pending)
		sort.Slice(refs, func(i, j int) bool {
			return refs[i].BlockNumber < refs[j].BlockNumber
		})

		for _, ref := range refs {
			// Events that decoded a positive USD amount are already
			// correctly denominated.
			if ref.USD > 0 || ref.Hash == "" {
				continue
			}
			tx := memo[ref.Hash]
			if tx == nil || tx.Value == "" {
				continue
			}
			wei, err := hexutil.DecodeBig(tx.Value)
			if err != nil {
				logger.Warn("parse transaction value",
					zap.String("tx", ref.Hash),
					zap.String("value", tx.Value),
					zap.Error(err),
				)
				continue
			}
			if wei.Sign() <= 0 {
				continue
			}

			eth := weiToEth(wei)
			w.totalETH += eth
			w.lastETH = eth
			w.ethTxCount++
			attributed++
		}

		w.pending = nil
	}

	logger.Info("native-transfer reconciliation complete",
		zap.Int("transactions", len(hashes)),
		zap.Int("fetched", fetched),
		zap.Int("attributed", attributed),
	)
	return nil
}

// pendingZeroUSDHashes collects the distinct transaction hashes of owned
// wallets' zero-USD events, preserving first-seen order.
func pendingZeroUSDHashes(agg *Aggregator) []string {
	seen := make(map[string]struct{})
	var hashes []string
	for _, addr := range agg.order {
		w := agg.states[addr]
		if !w.isOurs {
			continue
		}
		for _, ref := range w.pending {
			if ref.USD > 0 || ref.Hash == "" {
				continue
			}
			if _, ok := seen[ref.Hash]; ok {
				continue
			}
			seen[ref.Hash] = struct{}{}
			hashes = append(hashes, ref.Hash)
		}
	}
	return hashes
}
