package authgate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client communicates with the session approval HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type checkResponse struct {
	Decision string `json:"decision"`
}

// Check asks the approval service for the session's decision. An unknown
// session reads as denied; transport failures surface as errors so the
// caller can distinguish "denied" from "could not check".
func (c *Client) Check(ctx context.Context, sessionToken string) (Decision, error) {
	u := c.baseURL + "/sessions/check?token=" + url.QueryEscape(sessionToken)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Denied, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Denied, fmt.Errorf("check session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Denied, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Denied, fmt.Errorf("check session: status %d: %s", resp.StatusCode, string(respBody))
	}

	var body checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Denied, fmt.Errorf("decode decision: %w", err)
	}

	switch Decision(body.Decision) {
	case Allowed, Pending, Denied:
		return Decision(body.Decision), nil
	default:
		return Denied, fmt.Errorf("unknown decision %q", body.Decision)
	}
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
