package model

// WalletRecord is the finalized per-wallet projection included in the
// payload. JSON keys are fixed; the dashboard consumes them verbatim.
type WalletRecord struct {
	Wallet         string  `json:"wallet"`
	TotalUSD       float64 `json:"totalUsd"`
	LastUSD        float64 `json:"lastUsd"`
	Events         int     `json:"events"`
	LockMonths     []int   `json:"lockMonths"`
	LastLockMonths int     `json:"lastLockMonths"`
	LastBlock      int64   `json:"lastBlock"`
	IsOurs         bool    `json:"is_ours"`

	// Native-currency fields, populated only for owned wallets.
	TotalETH   float64 `json:"totalEth"`
	LastETH    float64 `json:"lastEth"`
	ETHTxCount int     `json:"ethTxCount"`
}

// PaymentTotals groups totals by payment currency.
type PaymentTotals struct {
	USD float64 `json:"USD"`
}

// Payload is the fully assembled analytics response. The unprefixed
// total_usd / total_usd_without_eth / payment_totals_usd keys are legacy
// aliases of the our_* fields kept for older consumers.
type Payload struct {
	UpdatedAt string `json:"updated_at"`

	TotalEvents   int `json:"total_events"`
	UniqueWallets int `json:"unique_wallets"`

	OverallTotalUSD           float64       `json:"overall_total_usd"`
	OverallTotalUSDWithoutETH float64       `json:"overall_total_usd_without_eth"`
	OverallPaymentTotalsUSD   PaymentTotals `json:"overall_payment_totals_usd"`

	OurTotalUSD           float64       `json:"our_total_usd"`
	OurTotalUSDWithoutETH float64       `json:"our_total_usd_without_eth"`
	OurPaymentTotalsUSD   PaymentTotals `json:"our_payment_totals_usd"`

	TotalUSD           float64       `json:"total_usd"`
	TotalUSDWithoutETH float64       `json:"total_usd_without_eth"`
	PaymentTotalsUSD   PaymentTotals `json:"payment_totals_usd"`

	OurUniqueWallets   int     `json:"our_unique_wallets"`
	OurTotalUSDLastBid float64 `json:"our_total_usd_last_bid"`

	Wallets []WalletRecord `json:"wallets"`
}
