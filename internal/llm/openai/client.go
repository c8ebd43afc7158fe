// Package openai implements llm.Client against an OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"resume-feedback/internal/llm"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Config carries the transport knobs the client consumes but does not own.
type Config struct {
	APIKey string
	APIURL string
	Model  string
	// ResponseTimeout bounds the whole request including body read.
	ResponseTimeout time.Duration
	// ConnectTimeout bounds dialing only, so a dead endpoint fails fast
	// without shortening slow-but-alive completions.
	ConnectTimeout time.Duration
}

// Client posts chat completion requests and returns the raw envelope.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a client from config, applying defaults for the
// optional knobs.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	responseTimeout := cfg.ResponseTimeout
	if responseTimeout <= 0 {
		responseTimeout = 120 * time.Second
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}

	return &Client{
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		model:  cfg.Model,
		httpClient: &http.Client{
			Timeout:   responseTimeout,
			Transport: transport,
		},
	}, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// Complete posts the request and returns the raw response body. Status and
// transport failures are errors; a syntactically broken body is not — shape
// validation is the caller's concern.
func (c *Client) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("generation request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generation service http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return json.RawMessage(body), nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		return s[:max]
	}
	return s
}

var _ llm.Client = (*Client)(nil)
