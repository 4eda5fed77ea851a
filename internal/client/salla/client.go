package salla

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/yousefm/sallasync/internal/xhttp"
)

type Client struct {
	Orders    OrderService
	Customers CustomerService
	Webhooks  WebhookService

	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

const DefaultTimeout = 30 * time.Second

func New(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	const baseURL = "https://api.salla.dev/admin/v2"

	cfg := &clientConfig{
		baseURL:     baseURL,
		tokenSource: tokenSource,
		logger:      slog.Default(),
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := &sallaTransport{
		base:        xhttp.NewTransport(),
		tokenSource: cfg.tokenSource,
	}

	c := &Client{
		baseURL:    cfg.baseURL,
		httpClient: &http.Client{Transport: transport, Timeout: cfg.timeout},
		logger:     cfg.logger,
	}

	c.Orders = &orderService{client: c}
	c.Customers = &customerService{client: c}
	c.Webhooks = &webhookService{client: c}

	return c
}

type clientConfig struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	timeout     time.Duration
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// do performs a single attempt against the platform API and decodes the
// response envelope. Retry policy belongs to callers.
func (c *Client) do(ctx context.Context, method string, path string, body any, result any) error {
	u := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := go_json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set(xhttp.ContentType, "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	var envelope struct {
		Success bool               `json:"success"`
		Data    go_json.RawMessage `json:"data"`
	}
	if err := go_json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w\nbody: %s", err, string(respBody))
	}

	// a transport-level success with success=false is still a rejection
	if !envelope.Success {
		return &APIError{
			Kind:       ErrorKindRejected,
			StatusCode: resp.StatusCode,
			Message:    "api reported failure",
			Body:       string(respBody),
		}
	}

	if result != nil {
		if err := go_json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("decoding response data: %w\nbody: %s", err, string(respBody))
		}
	}

	return nil
}

type sallaTransport struct {
	base        http.RoundTripper
	tokenSource oauth2.TokenSource
}

var _ http.RoundTripper = (*sallaTransport)(nil)

func (t *sallaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}
