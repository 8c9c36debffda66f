package openaicompat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parley-ai/parley/pkg/backend"
	"github.com/parley-ai/parley/pkg/chat"
)

const backendName = "openaicompat"

// defaultListTimeout bounds non-streaming calls like model listing.
const defaultListTimeout = 10 * time.Second

// Config holds the connection settings for an OpenAI-compatible server.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:1234/v1".
	BaseURL string
	// APIKey, when set, is sent as a bearer token.
	APIKey string
	// ListTimeout bounds model-listing calls. Zero means the default.
	ListTimeout time.Duration
}

// Client speaks the OpenAI chat completions protocol in streaming mode.
type Client struct {
	cfg    Config
	client *http.Client
}

var _ backend.Backend = (*Client)(nil)

// New creates a client. The HTTP client carries no timeout: streaming
// responses stay open as long as the model generates, so request lifetime
// is governed by the caller's context.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: base URL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = defaultListTimeout
	}
	return &Client{cfg: cfg, client: &http.Client{}}, nil
}

func (c *Client) Name() string { return backendName }

// Stream posts a streaming chat completion and returns the delta stream.
func (c *Client) Stream(ctx context.Context, req *backend.Request) (*backend.DeltaStream, error) {
	wire := chatCompletionRequest{
		Model:             req.Model,
		Messages:          req.Messages,
		Tools:             req.Tools,
		Temperature:       req.Temperature,
		ParallelToolCalls: req.ParallelToolCalls,
		Stream:            true,
		Integrations:      req.Integrations,
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openaicompat: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	c.authorize(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, chat.NewBackendTransportError(backendName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readBody(resp.Body)
		resp.Body.Close()
		return nil, chat.NewBackendStatusError(backendName, resp.StatusCode, body)
	}

	var strip func(string) string
	if req.StripEmojis {
		strip = backend.StripEmojis
	}
	stream := backend.NewDeltaStream(16)
	go consumeSSE(ctx, resp.Body, newAggregator(strip), stream)
	return stream, nil
}

// ListModels fetches the server's model catalog.
func (c *Client) ListModels(ctx context.Context) ([]backend.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ListTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: building request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, chat.NewBackendTransportError(backendName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, chat.NewBackendStatusError(backendName, resp.StatusCode, readBody(resp.Body))
	}

	var models chatModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("openaicompat: decoding model list: %w", err)
	}
	return models.Data, nil
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

// readBody drains up to 8 KiB of an error response for diagnostics.
func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 8192))
	return string(b)
}
