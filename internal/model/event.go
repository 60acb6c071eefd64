package model

// Event is one decoded presale participation record. Events whose lock
// duration cannot be recovered from the log data are never materialized.
type Event struct {
	Wallet      string
	USD         float64
	LockMonths  int
	TxHash      string
	BlockNumber uint64
}
