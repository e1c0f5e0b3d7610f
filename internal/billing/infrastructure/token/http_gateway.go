package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// Config configures the HTTP token gateway.
type Config struct {
	// BaseURL is the token service endpoint.
	BaseURL string

	// Timeout bounds each request.
	Timeout time.Duration

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// OpenTimeout is the period of the open state.
	OpenTimeout time.Duration

	// FailureThreshold is the consecutive-failure count that trips the breaker.
	FailureThreshold uint32
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// HTTPGateway talks to the token service over HTTP. A circuit breaker guards
// the engine against a flapping token backend; while the breaker is open,
// pulls fail fast and collection surfaces the failure instead of hanging.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewHTTPGateway creates a gateway from config.
func NewHTTPGateway(cfg Config, logger *slog.Logger) *HTTPGateway {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "token-gateway",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type approveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TransferFrom pulls amount from the subscriber into custody.
func (g *HTTPGateway) TransferFrom(ctx context.Context, from, to sharedDomain.Identity, amount int64) error {
	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.post(ctx, "/transfers", transferRequest{
			From:   from.String(),
			To:     to.String(),
			Amount: amount,
		})
	})
	return err
}

// Approve grants a spender an allowance on behalf of the engine.
func (g *HTTPGateway) Approve(ctx context.Context, spender sharedDomain.Identity, amount int64) error {
	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.post(ctx, "/approvals", approveRequest{
			Spender: spender.String(),
			Amount:  amount,
		})
	})
	return err
}

// BalanceOf reports the token balance of an account.
func (g *HTTPGateway) BalanceOf(ctx context.Context, id sharedDomain.Identity) (int64, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		endpoint := g.baseURL + "/accounts/" + url.PathEscape(id.String()) + "/balance"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("token request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, responseError(resp)
		}

		var body balanceResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode balance: %w", err)
		}
		return body.Balance, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

var _ domain.TokenGateway = (*HTTPGateway)(nil)

func (g *HTTPGateway) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp)
	}

	// Drain for connection reuse; the body content is irrelevant here.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func responseError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("token service returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("token service returned %d", resp.StatusCode)
}
