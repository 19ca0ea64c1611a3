package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/gift-ledger/pkg/config"
)

// maxResponseBytes caps how much of a remote reply is read.
const maxResponseBytes = 1 << 20

// HTTPRemote calls a JSON analyzer endpoint:
//
//	POST {endpoint}
//	{"text": "...", "hints": {"contacts": [...], "categories": [...]}}
//
// and expects a RemoteResponse back.
type HTTPRemote struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

type remoteRequest struct {
	Text  string `json:"text"`
	Hints Hints  `json:"hints"`
}

// NewHTTPRemote creates a rate limited client for cfg.Endpoint.
func NewHTTPRemote(cfg config.AssistantConfig, logger *slog.Logger) *HTTPRemote {
	limit := rate.Inf
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &HTTPRemote{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Analyze posts text to the endpoint. Transport failures and non-2xx
// statuses are errors; a well-formed {"ok": false} reply is not.
func (h *HTTPRemote) Analyze(ctx context.Context, text string, hints Hints) (*RemoteResponse, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if hints.Contacts == nil {
		hints.Contacts = []string{}
	}
	if hints.Categories == nil {
		hints.Categories = []string{}
	}

	payload, err := json.Marshal(remoteRequest{Text: text, Hints: hints})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call remote analyzer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read analyze response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Warn("remote analyzer returned error status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 200)),
		)
		return nil, fmt.Errorf("remote analyzer returned status %d", resp.StatusCode)
	}

	var out RemoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse analyze response: %w", err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
