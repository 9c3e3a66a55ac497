// Package predict is the client of the price prediction service.
package predict

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/logger"
)

// ErrMalformedResponse is returned when the service answers 2xx with a body
// that is not JSON or carries no formatted price.
var ErrMalformedResponse = errors.New("malformed prediction response")

// maxBody caps how much of an error body is kept for diagnostics.
const maxBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("prediction service returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("prediction service returned HTTP %d: %s", e.Code, e.Body)
}

// Result is a successful prediction. FormattedPrice is displayed verbatim.
type Result struct {
	FormattedPrice string  `json:"formatted_price"`
	PredictedPrice float64 `json:"predicted_price_MAD"`
}

// Client talks to a prediction service rooted at an endpoint base URL.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a client for endpoint, e.g. "http://localhost:8000".
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Predict posts req to <endpoint>/predict. It makes exactly one attempt.
func (c *Client) Predict(ctx context.Context, req estimate.Request) (*Result, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	logger.Debug("POST %s/predict: %s", c.endpoint, body)
	resp, err := c.do(ctx, http.MethodPost, "/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		FormattedPrice *string `json:"formatted_price"`
		PredictedPrice float64 `json:"predicted_price_MAD"`
	}
	if err := sonic.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.FormattedPrice == nil {
		return nil, fmt.Errorf("%w: missing formatted_price", ErrMalformedResponse)
	}

	logger.Info("Prediction received: %s", *result.FormattedPrice)
	return &Result{
		FormattedPrice: *result.FormattedPrice,
		PredictedPrice: result.PredictedPrice,
	}, nil
}

// Health probes <endpoint>/health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("%s %s failed: %v", method, path, err)
		return nil, fmt.Errorf("failed to reach prediction service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxBody {
			msg = msg[:maxBody]
		}
		logger.Warn("%s %s returned HTTP %d", method, path, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: msg}
	}
	return data, nil
}
