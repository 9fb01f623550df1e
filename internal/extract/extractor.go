// Package extract calls the document text-extraction service.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client posts a document URL to the extraction service and returns the
// extracted plain text.
type Client struct {
	serviceURL string
	httpClient *http.Client
}

// NewClient builds an extraction client. A nil httpClient gets a sane default.
func NewClient(serviceURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{serviceURL: serviceURL, httpClient: httpClient}
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Success    bool   `json:"success"`
	Text       string `json:"text"`
	TextLength int    `json:"textLength"`
}

// Extract fetches the text content for the document at documentURL.
func (c *Client) Extract(ctx context.Context, documentURL string) (string, error) {
	body, err := json.Marshal(extractRequest{URL: documentURL})
	if err != nil {
		return "", fmt.Errorf("marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, detail)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode extract response: %w", err)
	}
	if !out.Success || out.Text == "" {
		return "", fmt.Errorf("extraction service returned no text")
	}

	log.Printf("extract: got %d characters for %s", out.TextLength, documentURL)
	return out.Text, nil
}
