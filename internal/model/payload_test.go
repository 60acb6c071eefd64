package model

import (
	"encoding/json"
	"testing"
)

func TestPayloadJSONKeys(t *testing.T) {
	payload := Payload{
		UpdatedAt:   "2025-01-01T00:00:00.000Z",
		TotalEvents: 2,
		Wallets: []WalletRecord{{
			Wallet:     "0x1111111111111111111111111111111111111111",
			LockMonths: []int{6},
		}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	// The legacy dashboard reads both the prefixed and the unprefixed
	// aliases; all must be present.
	for _, key := range []string{
		"updated_at",
		"total_events",
		"unique_wallets",
		"overall_total_usd",
		"overall_total_usd_without_eth",
		"overall_payment_totals_usd",
		"our_total_usd",
		"our_total_usd_without_eth",
		"our_payment_totals_usd",
		"total_usd",
		"total_usd_without_eth",
		"payment_totals_usd",
		"our_unique_wallets",
		"our_total_usd_last_bid",
		"wallets",
	} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing payload key %q", key)
		}
	}

	wallet, ok := decoded["wallets"].([]interface{})[0].(map[string]interface{})
	if !ok {
		t.Fatalf("wallets shape mismatch")
	}
	for _, key := range []string{
		"wallet", "totalUsd", "lastUsd", "events", "lockMonths",
		"lastLockMonths", "lastBlock", "is_ours", "totalEth", "lastEth", "ethTxCount",
	} {
		if _, ok := wallet[key]; !ok {
			t.Fatalf("missing wallet key %q", key)
		}
	}
}

func TestPaymentTotalsCurrencyKey(t *testing.T) {
	data, err := json.Marshal(PaymentTotals{USD: 10})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"USD":10}` {
		t.Fatalf("currency key must stay upper-case: %s", data)
	}
}
