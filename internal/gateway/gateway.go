package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGateway marks a failed payment-intent creation. The error is retryable:
// checkout leaves the pending order in place so a retry can reuse it.
var ErrGateway = errors.New("payment gateway error")

type IntentRequest struct {
	Reference    string   `json:"reference"`
	AmountCents  int      `json:"amount_cents"`
	Currency     string   `json:"currency"`
	Descriptions []string `json:"descriptions"`
	BuyerEmail   string   `json:"buyer_email,omitempty"`
	ReturnURL    string   `json:"return_url"`
	CancelURL    string   `json:"cancel_url"`
}

type Intent struct {
	IntentID    string `json:"intent_id"`
	RedirectURL string `json:"redirect_url"`
}

// Client is the outbound payment-gateway port consumed by checkout.
type Client interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type Config struct {
	BaseURL   string
	APIKey    string
	Currency  string
	ReturnURL string
	CancelURL string
	Timeout   time.Duration
}

// HTTPClient talks JSON to the provider's payment-intent endpoint.
type HTTPClient struct {
	cfg   Config
	httpc *http.Client
}

func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *HTTPClient) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	const op = "gateway.HTTPClient.CreateIntent"

	if req.Currency == "" {
		req.Currency = c.cfg.Currency
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.cfg.ReturnURL
	}
	if req.CancelURL == "" {
		req.CancelURL = c.cfg.CancelURL
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.BaseURL+"/v1/payment-intents",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s:%w: %w", op, ErrGateway, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s:%w: status %d", op, ErrGateway, resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%s:%w: %w", op, ErrGateway, err)
	}

	if intent.IntentID == "" {
		return nil, fmt.Errorf("%s:%w: empty intent id", op, ErrGateway)
	}

	return &intent, nil
}
