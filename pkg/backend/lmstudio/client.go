package lmstudio

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

const backendName = "lmstudio"

const (
	// defaultChatTimeout bounds one native chat call. The endpoint does not
	// stream, so the full generation happens within a single request.
	defaultChatTimeout = 120 * time.Second
	// defaultListTimeout bounds model-listing calls.
	defaultListTimeout = 10 * time.Second
)

// Config holds the connection settings for an LM Studio server.
type Config struct {
	// BaseURL is the server address. A trailing "/v1" suffix (as used for
	// the OpenAI-compatible endpoints) is stripped so the native /api/v1
	// routes can be targeted.
	BaseURL string
	// APIKey, when set, is sent as a bearer token.
	APIKey string
	// ChatTimeout bounds one chat call. Zero means the default.
	ChatTimeout time.Duration
	// ListTimeout bounds model-listing calls. Zero means the default.
	ListTimeout time.Duration
}

// Client speaks the LM Studio native REST API.
type Client struct {
	root        string
	apiKey      string
	chatTimeout time.Duration
	listTimeout time.Duration
	client      *http.Client
}

var _ backend.Backend = (*Client)(nil)

// New creates a client for the native API rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("lmstudio: base URL is required")
	}
	root := strings.TrimRight(cfg.BaseURL, "/")
	root = strings.TrimSuffix(root, "/v1")
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = defaultChatTimeout
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = defaultListTimeout
	}
	return &Client{
		root:        root,
		apiKey:      cfg.APIKey,
		chatTimeout: cfg.ChatTimeout,
		listTimeout: cfg.ListTimeout,
		client:      &http.Client{},
	}, nil
}

func (c *Client) Name() string { return backendName }

// Stream performs one non-streaming native chat call and returns its
// result as a stream of exactly one delta.
func (c *Client) Stream(ctx context.Context, req *backend.Request) (*backend.DeltaStream, error) {
	wire := nativeRequest{
		Model:         req.Model,
		Input:         toNativeInput(req.Messages),
		Temperature:   req.Temperature,
		ContextLength: req.ContextLength,
		Integrations:  req.Integrations,
		Tools:         req.Tools,
	}

	resp, err := c.chat(ctx, &wire)
	if err != nil {
		return nil, err
	}

	text, resolved := parseResponse(resp)
	logResolvedCalls(resolved)
	if req.StripEmojis && text != "" {
		text = backend.StripEmojis(text)
	}

	stream := backend.NewDeltaStream(1)
	stream.Send(ctx, chat.Delta{Role: chat.RoleAssistant, Content: text})
	stream.Close(nil)
	return stream, nil
}

func (c *Client) chat(ctx context.Context, wire *nativeRequest) (*nativeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("lmstudio: encoding request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.root+"/api/v1/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("lmstudio: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, chat.NewBackendTransportError(backendName, err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return nil, chat.NewBackendStatusError(backendName, httpResp.StatusCode, readBody(httpResp.Body))
	}

	var resp nativeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("lmstudio: decoding response: %w", err)
	}
	return &resp, nil
}

// ListModels fetches the native model catalog.
func (c *Client) ListModels(ctx context.Context) ([]backend.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.root+"/api/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("lmstudio: building request: %w", err)
	}
	c.authorize(httpReq)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, chat.NewBackendTransportError(backendName, err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return nil, chat.NewBackendStatusError(backendName, httpResp.StatusCode, readBody(httpResp.Body))
	}

	var models nativeModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("lmstudio: decoding model list: %w", err)
	}
	return models.Data, nil
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 8192))
	return string(b)
}
