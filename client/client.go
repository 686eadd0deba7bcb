package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/siherrmann/nutricoach/model"
)

// DefaultTimeout bounds a whole analyze request. It is longer than the server's
// generation timeout so a timed out generation still arrives as a failure answer.
const DefaultTimeout = 30 * time.Second

// Client calls the analyze endpoint of a nutricoach server
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new client for the server at baseURL, e.g. "http://127.0.0.1:8000"
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Analyze posts q to the server and returns its answer
func (c *Client) Analyze(ctx context.Context, q model.Query) (model.StructuredAnswer, error) {
	payload := map[string]interface{}{"query": q.Query}
	if q.ParentQuery != "" {
		payload["parent_query"] = q.ParentQuery
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return model.StructuredAnswer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze/", bytes.NewReader(body))
	if err != nil {
		return model.StructuredAnswer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.StructuredAnswer{}, fmt.Errorf("backend error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.StructuredAnswer{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return model.StructuredAnswer{}, fmt.Errorf("backend error: %s (%d)", errResp.Error, resp.StatusCode)
		}
		return model.StructuredAnswer{}, fmt.Errorf("backend error: %s", resp.Status)
	}

	var answer model.StructuredAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return model.StructuredAnswer{}, fmt.Errorf("decode answer: %w", err)
	}
	return answer, nil
}
