package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 512

// FunctionClient calls the remote extraction function over HTTP
type FunctionClient struct {
	url        string
	key        string
	httpClient *http.Client
}

// NewFunctionClient creates a client for the function at url
func NewFunctionClient(url, key string, timeout time.Duration) *FunctionClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &FunctionClient{
		url:        url,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolves reports the sources the function reads itself: pasted text and
// page URLs. PDFs are converted to text before the call.
func (c *FunctionClient) Resolves(source Source) bool {
	return source == SourceText || source == SourceURL
}

// Extract posts {content, source} and decodes {success, modules, error}.
// A decoded success=false is returned as a Result, not an error.
func (c *FunctionClient) Extract(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}

	var result Result
	decodeErr := json.Unmarshal(respBody, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// functions often report failures as {success:false,error} with a 4xx/5xx
		if decodeErr == nil && result.Error != "" {
			return &result, nil
		}
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("extraction function error (status %d): %s", resp.StatusCode, string(snippet))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", decodeErr)
	}
	return &result, nil
}
