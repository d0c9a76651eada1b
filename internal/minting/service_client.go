package minting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// ServiceClient is a Minter backed by an external minting service that
// wraps Metaplex. Minting is not idempotent, so only transport-level
// failures before a response arrives are retried.
type ServiceClient struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
}

// ServiceOption configures ServiceClient.
type ServiceOption func(*ServiceClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ServiceOption {
	return func(c *ServiceClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ServiceOption {
	return func(c *ServiceClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ServiceOption {
	return func(c *ServiceClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(c *ServiceClient) {
		c.client = client
	}
}

// NewServiceClient creates a client for the minting service.
func NewServiceClient(endpoint string, opts ...ServiceOption) *ServiceClient {
	c := &ServiceClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Minter = (*ServiceClient)(nil)

type mintServiceRequest struct {
	EventID     string `json:"eventId"`
	EventName   string `json:"eventName"`
	BuyerWallet string `json:"buyerWallet"`
}

type mintServiceResponse struct {
	Success     bool   `json:"success"`
	MintAddress string `json:"mintAddress,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Mint posts the request to the minting service and returns the mint
// address it reports.
func (c *ServiceClient) Mint(ctx context.Context, req MintRequest) (*MintResult, error) {
	body, err := json.Marshal(mintServiceRequest{
		EventID:     req.EventID,
		EventName:   req.EventName,
		BuyerWallet: req.BuyerWallet,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			// The request may never have reached the service; retrying
			// is safe only for this class of failure.
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		var svcResp mintServiceResponse
		if err := json.Unmarshal(respBody, &svcResp); err != nil {
			return nil, fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
		}

		if resp.StatusCode != http.StatusOK || !svcResp.Success {
			msg := svcResp.Error
			if msg == "" {
				msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
			}
			return nil, fmt.Errorf("minting service: %s", msg)
		}

		if svcResp.MintAddress == "" {
			return nil, fmt.Errorf("minting service returned success without a mint address")
		}

		return &MintResult{MintAddress: svcResp.MintAddress}, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
