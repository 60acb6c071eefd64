package etherscan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"presaleScope/internal/model"
)

const (
	defaultTries          = 4
	defaultTimeout        = 10 * time.Second
	defaultInitialBackoff = 1200 * time.Millisecond
	defaultMaxBackoff     = 6500 * time.Millisecond
)

// Config configures the Etherscan client.
type Config struct {
	BaseURL    string
	APIKey     string
	ChainID    uint64
	Contract   string
	EventTopic string

	// Tries is the attempt budget for log fetches; ReconcileTries for
	// transaction lookups.
	Tries          int
	ReconcileTries int
	Timeout        time.Duration

	// PageSize > 0 switches the logs endpoint to paginated fetching,
	// looping until an empty page.
	PageSize int

	// Backoff tuning; zero values take the production defaults.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client fetches JSON from the Etherscan API with bounded retries and
// exponential backoff.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds an Etherscan client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Tries <= 0 {
		cfg.Tries = defaultTries
	}
	if cfg.ReconcileTries <= 0 {
		cfg.ReconcileTries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
	}
}

// UpstreamError is a definitive non-success reply from Etherscan. It is
// not retried; the raw body is carried for diagnosis.
type UpstreamError struct {
	Status  string
	Message string
	Body    json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("etherscan error: status=%q message=%q", e.Status, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Transaction is the subset of eth_getTransactionByHash used for
// native-transfer reconciliation.
type Transaction struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

type txEnvelope struct {
	Result *Transaction `json:"result"`
}

// FetchLogs retrieves all contract event logs over the full block range.
// When PageSize is set, pages are fetched until the upstream reports no
// further records.
func (c *Client) FetchLogs(ctx context.Context) ([]model.RawLog, error) {
	if c.cfg.PageSize <= 0 {
		return c.fetchLogsPage(ctx, 0)
	}

	var all []model.RawLog
	for page := 1; ; page++ {
		logs, err := c.fetchLogsPage(ctx, page)
		if err != nil {
			var upstream *UpstreamError
			// An exhausted result set surfaces as a status "0" reply.
			if page > 1 && errors.As(err, &upstream) &&
				strings.Contains(strings.ToLower(upstream.Message), "no records found") {
				break
			}
			return nil, err
		}
		if len(logs) == 0 {
			break
		}
		all = append(all, logs...)
		c.logger.Debug("fetched logs page", zap.Int("page", page), zap.Int("count", len(logs)))
	}
	return all, nil
}

func (c *Client) fetchLogsPage(ctx context.Context, page int) ([]model.RawLog, error) {
	q := url.Values{}
	q.Set("chainid", strconv.FormatUint(c.cfg.ChainID, 10))
	q.Set("module", "logs")
	q.Set("action", "getLogs")
	q.Set("address", c.cfg.Contract)
	q.Set("topic0", c.cfg.EventTopic)
	q.Set("fromBlock", "0")
	q.Set("toBlock", "latest")
	q.Set("apikey", c.cfg.APIKey)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
		q.Set("offset", strconv.Itoa(c.cfg.PageSize))
	}

	var env envelope
	if err := c.fetchJSON(ctx, c.cfg.BaseURL+"?"+q.Encode(), c.cfg.Tries, &env); err != nil {
		return nil, err
	}

	if env.Status != "1" {
		body, _ := json.Marshal(env)
		return nil, &UpstreamError{Status: env.Status, Message: env.Message, Body: body}
	}

	var logs []model.RawLog
	if err := json.Unmarshal(env.Result, &logs); err != nil {
		return nil, fmt.Errorf("decode logs result: %w", err)
	}
	return logs, nil
}

// FetchTransaction retrieves transaction details by hash via the proxy
// endpoint. A missing transaction yields (nil, nil).
func (c *Client) FetchTransaction(ctx context.Context, txHash string) (*Transaction, error) {
	q := url.Values{}
	q.Set("chainid", strconv.FormatUint(c.cfg.ChainID, 10))
	q.Set("module", "proxy")
	q.Set("action", "eth_getTransactionByHash")
	q.Set("txhash", txHash)
	q.Set("apikey", c.cfg.APIKey)

	var env txEnvelope
	if err := c.fetchJSON(ctx, c.cfg.BaseURL+"?"+q.Encode(), c.cfg.ReconcileTries, &env); err != nil {
		return nil, err
	}
	return env.Result, nil
}

// fetchJSON issues a GET with a per-attempt timeout and retries on
// transient failures: network errors, non-2xx statuses, and the soft
// "busy" condition Etherscan reports inside a 200 response. The last
// observed error is returned once the attempt budget is exhausted.
func (c *Client) fetchJSON(ctx context.Context, rawURL string, tries int, out interface{}) error {
	if tries < 1 {
		tries = 1
	}

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		if retryable := retryableFailure(resp.StatusCode, body); retryable != nil {
			return retryable
		}

		if out != nil && len(body) > 0 {
			if err := json.Unmarshal(body, out); err != nil {
				// An unparseable 200 body is treated as an empty reply;
				// callers see the zero-value envelope and surface it as an
				// upstream error. The URL is not logged: it carries the key.
				c.logger.Debug("unparseable response body", zap.Error(err))
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(tries-1)), ctx))
}

// retryableFailure classifies a response as a transient failure, returning
// nil when the response is usable. Etherscan signals rate-limit pressure
// as {"status":"0","message":"...Timeout..."} inside a 200.
func retryableFailure(statusCode int, body []byte) error {
	var probe struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &probe)

	busy := probe.Status == "0" && strings.Contains(strings.ToLower(probe.Message), "timeout")
	if statusCode >= 200 && statusCode < 300 && !busy {
		return nil
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		return fmt.Errorf("etherscan: %s", trimmed)
	}
	return fmt.Errorf("etherscan: HTTP %d", statusCode)
}
