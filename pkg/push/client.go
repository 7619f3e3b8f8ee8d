// Package push provides a client for the push gateway that fans a message
// out to a user's registered devices. The gateway resolves user -> devices;
// the notifier only addresses users.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client represents a push gateway client.
type Client struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

// NewClient creates a new push Client for the given gateway.
func NewClient(gatewayURL, apiKey string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{},
	}
}

// sendRequest represents the payload for the gateway's notify endpoint.
type sendRequest struct {
	UserID string `json:"user_id"`
	Body   string `json:"body"`
}

// Send pushes a notification to all devices of the given user.
func (c *Client) Send(ctx context.Context, to string, msg string) error {
	body, err := json.Marshal(sendRequest{UserID: to, Body: msg})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push gateway error: %s", resp.Status)
	}

	return nil
}
