package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"presaleScope/internal/cache"
	"presaleScope/internal/etherscan"
	"presaleScope/internal/model"
	"presaleScope/internal/pipeline"
	"presaleScope/internal/wallets"
)

const ownedWallet = "0x1111111111111111111111111111111111111111"

func eventData(usdWord, lockWord uint64) string {
	return fmt.Sprintf("0x%064x%064x%064x", usdWord, 0, lockWord)
}

func logsBody(data string) string {
	log := model.RawLog{
		Topics: []string{
			"0x95cfdb8b2e91654ec715d9403064639685780d9bc570c4c0732886c210481b9f",
			"0x000000000000000000000000" + ownedWallet[2:],
		},
		Data:            data,
		BlockNumber:     "0xa",
		TransactionHash: "0xabc",
	}
	result, _ := json.Marshal([]model.RawLog{log})
	return fmt.Sprintf(`{"status":"1","message":"OK","result":%s}`, result)
}

type fixture struct {
	srv      *Server
	upstream *httptest.Server
	calls    *atomic.Int32
}

func newFixture(t *testing.T, hasAPIKey bool, upstreamBody func(r *http.Request) string) *fixture {
	t.Helper()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, upstreamBody(r))
	}))
	t.Cleanup(upstream.Close)

	client := etherscan.NewClient(etherscan.Config{
		BaseURL:        upstream.URL,
		APIKey:         "test-key",
		ChainID:        1,
		Contract:       "0xcontract",
		EventTopic:     "0xtopic",
		Tries:          1,
		ReconcileTries: 1,
		Timeout:        2 * time.Second,
		InitialBackoff: time.Millisecond,
	}, nil)

	owned := wallets.Set{ownedWallet: {}}
	clock := func() time.Time { return time.Unix(1_700_000_000, 0) }
	p := pipeline.New(client, owned, 2, nil, clock)
	payloadCache := cache.New(25*time.Second, clock)

	return &fixture{
		srv:      New(p, payloadCache, hasAPIKey, nil),
		upstream: upstream,
		calls:    &calls,
	}
}

func get(t *testing.T, f *fixture) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/presale", nil)
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMissingAPIKeyMakesNoUpstreamCalls(t *testing.T) {
	f := newFixture(t, false, func(*http.Request) string { return "" })

	rec := get(t, f)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status mismatch: %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Missing ETHERSCAN_API_KEY" {
		t.Fatalf("error string mismatch: %+v", body)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("expected zero upstream calls, got %d", f.calls.Load())
	}
}

func TestPresaleSuccess(t *testing.T) {
	f := newFixture(t, true, func(*http.Request) string {
		return logsBody(eventData(500_000000, 6))
	})

	rec := get(t, f)
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: %d body=%s", rec.Code, rec.Body.String())
	}

	var payload model.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TotalEvents != 1 || payload.UniqueWallets != 1 {
		t.Fatalf("counts mismatch: %+v", payload)
	}
	if payload.OurTotalUSD != 500.00 || payload.OverallTotalUSD != 500.00 {
		t.Fatalf("totals mismatch: %+v", payload)
	}
	if len(payload.Wallets) != 1 || payload.Wallets[0].Wallet != ownedWallet {
		t.Fatalf("wallets mismatch: %+v", payload.Wallets)
	}
	if !payload.Wallets[0].IsOurs || payload.Wallets[0].LastLockMonths != 6 {
		t.Fatalf("wallet record mismatch: %+v", payload.Wallets[0])
	}
}

func TestPresaleCachedWithinTTL(t *testing.T) {
	f := newFixture(t, true, func(*http.Request) string {
		return logsBody(eventData(500_000000, 6))
	})

	first := get(t, f)
	if first.Code != http.StatusOK {
		t.Fatalf("first request failed: %d", first.Code)
	}
	callsAfterFirst := f.calls.Load()

	second := get(t, f)
	if second.Code != http.StatusOK {
		t.Fatalf("second request failed: %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached payload must be byte-identical")
	}
	if f.calls.Load() != callsAfterFirst {
		t.Fatalf("cache hit must not refetch: %d -> %d", callsAfterFirst, f.calls.Load())
	}
}

func TestPresaleUpstreamError(t *testing.T) {
	f := newFixture(t, true, func(*http.Request) string {
		return `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`
	})

	rec := get(t, f)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status mismatch: %d", rec.Code)
	}

	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Etherscan error" {
		t.Fatalf("error mismatch: %+v", body)
	}
	if len(body.Details) == 0 {
		t.Fatalf("raw upstream payload should be attached")
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true, func(*http.Request) string { return "" })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	f.srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status mismatch: %d", rec.Code)
	}
}
