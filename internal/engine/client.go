package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP translation client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	RPS        float64
	Burst      int
	Stats      *CallStats
}

// Client calls the upstream translation engine over HTTP. Outbound calls are
// paced by a token-bucket limiter so the engine's rate limits are respected
// proactively rather than only after a 429.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	stats      *CallStats
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		stats:      cfg.Stats,
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Error          string `json:"error,omitempty"`
}

// Translate performs a single translation call. All failures surface as
// *UpstreamError; callers classify via IsRetryable.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &UpstreamError{Message: err.Error()}
	}

	if sourceLang == "" {
		sourceLang = AutoDetect
	}
	body, err := json.Marshal(translateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.record(start, true)
		return "", &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		c.record(start, true)
		return "", &UpstreamError{Message: fmt.Sprintf("read response: %s", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.record(start, true)
		return "", &UpstreamError{Status: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp translateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		c.record(start, true)
		return "", &UpstreamError{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %s", err)}
	}
	if apiResp.Error != "" {
		c.record(start, true)
		return "", &UpstreamError{Status: resp.StatusCode, Message: apiResp.Error}
	}
	if apiResp.TranslatedText == "" {
		c.record(start, true)
		return "", &UpstreamError{Status: resp.StatusCode, Message: "empty translation in response"}
	}

	c.record(start, false)
	return apiResp.TranslatedText, nil
}

func (c *Client) record(start time.Time, failed bool) {
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds(), failed)
	}
}

// Stats returns the client's call stats, if any.
func (c *Client) Stats() *CallStats {
	return c.stats
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
