// Package sms provides a client for an HTTP SMS gateway.
//
// The gateway exposes a single JSON endpoint; any non-200 response is
// treated as a delivery failure.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client represents an SMS gateway client used to send notifications.
type Client struct {
	gatewayURL string
	apiKey     string
	from       string
	client     *http.Client
}

// NewClient creates a new SMS Client for the given gateway.
func NewClient(gatewayURL, apiKey, from string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		from:       from,
		client:     &http.Client{},
	}
}

// sendRequest represents the payload for the gateway's send endpoint.
type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send sends a text message to the given phone number.
func (c *Client) Send(ctx context.Context, to string, msg string) error {
	body, err := json.Marshal(sendRequest{From: c.from, To: to, Text: msg})
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
		return fmt.Errorf("sms gateway error: %s", resp.Status)
	}

	return nil
}
