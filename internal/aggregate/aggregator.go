package aggregate

import (
	"time"

	"go.uber.org/zap"

	"presaleScope/internal/model"
	"presaleScope/internal/wallets"
)

// txRef retains what reconciliation needs about one owned-wallet event.
type txRef struct {
	Hash        string
	BlockNumber uint64
	USD         float64
}

// walletState is the mutable per-wallet accumulator. Only owned wallets
// carry pending transaction refs and native-currency fields.
type walletState struct {
	wallet     string
	isOurs     bool
	totalUSD   float64
	lastUSD    float64
	events     int
	lockMonths []int
	lastLock   int
	lastBlock  int64

	totalETH   float64
	lastETH    float64
	ethTxCount int

	pending []txRef
}

// Aggregator folds decoded events into per-wallet state and running
// overall/owned totals.
type Aggregator struct {
	owned  wallets.Set
	logger *zap.Logger

	states map[string]*walletState
	order  []string // first-seen wallet order, kept stable in the payload

	totalEvents int

	overallUSD           float64
	overallUSDWithoutETH float64
	ownedUSD             float64
	ownedUSDWithoutETH   float64
}

// NewAggregator builds an empty aggregator over the given allow-list.
func NewAggregator(owned wallets.Set, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		owned:  owned,
		logger: logger,
		states: make(map[string]*walletState),
	}
}

// Add folds one decoded event. Ownership is decided once, when the wallet
// is first seen. Zero-USD events update event bookkeeping but never the
// monetary totals; they are presumed native-currency payments pending
// reconciliation.
func (a *Aggregator) Add(e model.Event) {
	w := a.states[e.Wallet]
	if w == nil {
		w = &walletState{
			wallet:    e.Wallet,
			isOurs:    a.owned.Contains(e.Wallet),
			lastBlock: -1,
		}
		a.states[e.Wallet] = w
		a.order = append(a.order, e.Wallet)
	}

	a.totalEvents++
	w.events++
	w.lockMonths = append(w.lockMonths, e.LockMonths)

	// Last-bid tracking: strictly newer blocks win, ties keep first-seen.
	if int64(e.BlockNumber) > w.lastBlock {
		w.lastBlock = int64(e.BlockNumber)
		w.lastUSD = e.USD
		w.lastLock = e.LockMonths
	}

	if w.isOurs {
		w.pending = append(w.pending, txRef{
			Hash:        e.TxHash,
			BlockNumber: e.BlockNumber,
			USD:         e.USD,
		})
	}

	if e.USD > 0 {
		a.overallUSD += e.USD
		a.overallUSDWithoutETH += e.USD
		if w.isOurs {
			a.ownedUSD += e.USD
			a.ownedUSDWithoutETH += e.USD
			w.totalUSD += e.USD
		}
	}
}

// TotalEvents reports the number of folded events.
func (a *Aggregator) TotalEvents() int {
	return a.totalEvents
}

// Finalize rounds all accumulated values, computes the owned summary, and
// assembles the payload. Wallets appear in first-seen order.
func (a *Aggregator) Finalize(now time.Time) *model.Payload {
	records := make([]model.WalletRecord, 0, len(a.order))
	ownedUnique := 0
	ownedLastBid := 0.0

	for _, addr := range a.order {
		w := a.states[addr]
		if w.isOurs {
			ownedUnique++
			ownedLastBid += w.lastUSD
		}
		records = append(records, model.WalletRecord{
			Wallet:         w.wallet,
			TotalUSD:       round2(w.totalUSD),
			LastUSD:        round2(w.lastUSD),
			Events:         w.events,
			LockMonths:     w.lockMonths,
			LastLockMonths: w.lastLock,
			LastBlock:      w.lastBlock,
			IsOurs:         w.isOurs,
			TotalETH:       round6(w.totalETH),
			LastETH:        round6(w.lastETH),
			ETHTxCount:     w.ethTxCount,
		})
	}

	a.logMissingOwned()

	ownedTotals := model.PaymentTotals{USD: round2(a.ownedUSD)}
	return &model.Payload{
		UpdatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z"),

		TotalEvents:   a.totalEvents,
		UniqueWallets: len(records),

		OverallTotalUSD:           round2(a.overallUSD),
		OverallTotalUSDWithoutETH: round2(a.overallUSDWithoutETH),
		OverallPaymentTotalsUSD:   model.PaymentTotals{USD: round2(a.overallUSD)},

		OurTotalUSD:           round2(a.ownedUSD),
		OurTotalUSDWithoutETH: round2(a.ownedUSDWithoutETH),
		OurPaymentTotalsUSD:   ownedTotals,

		TotalUSD:           round2(a.ownedUSD),
		TotalUSDWithoutETH: round2(a.ownedUSDWithoutETH),
		PaymentTotalsUSD:   ownedTotals,

		OurUniqueWallets:   ownedUnique,
		OurTotalUSDLastBid: round2(ownedLastBid),

		Wallets: records,
	}
}

// logMissingOwned reports allow-listed wallets that never produced an
// event, a sanity check for stale allow-list entries.
func (a *Aggregator) logMissingOwned() {
	missing := 0
	for _, addr := range a.owned.Addresses() {
		if _, ok := a.states[addr]; !ok {
			missing++
			a.logger.Debug("owned wallet without events", zap.String("wallet", addr))
		}
	}
	if missing > 0 {
		a.logger.Info("owned wallets without events",
			zap.Int("missing", missing),
			zap.Int("allow_list", a.owned.Len()),
		)
	}
}
