// Package client provides an HTTP client for the memory backend, used by
// the capture side to run searches without a direct datastore connection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"interview-memory-service/internal/models"
)

// Client talks to the memory backend's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Search runs a memory search through POST /api/search-memory.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	body, err := json.Marshal(models.SearchMemoryRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/search-memory", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	var out models.SearchMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("search failed: %s", out.Error)
	}
	return out.Results, nil
}

// Save stores a memory through POST /api/save-memory.
func (c *Client) Save(ctx context.Context, reqBody models.SaveMemoryRequest) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/save-memory", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	defer resp.Body.Close()

	var out models.SaveMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decoding save response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("save failed: %s", out.Error)
	}
	return nil
}
