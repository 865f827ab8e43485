package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI-compatible inference endpoint used when none is configured
	DefaultBaseURL = "https://inference.do-ai.run"
	// DefaultTimeout is long because structure extraction over a whole document is slow
	DefaultTimeout = 120 * time.Second
	DefaultModel   = "openai-gpt-oss-120b"
)

// ErrNoChoices is returned when the API answers without any completion
var ErrNoChoices = errors.New("no choices returned from inference API")

// Client calls an OpenAI-compatible chat completions API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// Config holds configuration for the inference client
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Model   string
}

// NewClient creates a new inference client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		model: config.Model,
	}
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormatType selects plain, JSON or schema-constrained output
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSON       ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// JSONSchema defines the schema for structured JSON output
type JSONSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Schema      map[string]interface{} `json:"schema"`
	Strict      bool                   `json:"strict,omitempty"`
}

// ResponseFormat defines the response format for chat completions
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty"`
}

// Request is a chat completion request
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Choice is one completion alternative
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is token accounting for one call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a chat completion response
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Content returns the first choice's text
func (r *Response) Content() (string, error) {
	if len(r.Choices) == 0 {
		return "", ErrNoChoices
	}
	return r.Choices[0].Message.Content, nil
}

// Option modifies a request
type Option func(*Request)

// WithTemperature sets the sampling temperature
func WithTemperature(temp float64) Option {
	return func(req *Request) {
		req.Temperature = temp
	}
}

// WithMaxTokens caps the completion length
func WithMaxTokens(tokens int) Option {
	return func(req *Request) {
		req.MaxTokens = tokens
	}
}

// WithJSONMode requests a JSON object response
func WithJSONMode() Option {
	return func(req *Request) {
		req.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSON}
	}
}

// WithJSONSchema requests output conforming to schema
func WithJSONSchema(name, description string, schema map[string]interface{}) Option {
	return func(req *Request) {
		req.ResponseFormat = &ResponseFormat{
			Type: ResponseFormatJSONSchema,
			JSONSchema: &JSONSchema{
				Name:        name,
				Description: description,
				Schema:      schema,
				Strict:      true,
			},
		}
	}
}

// ChatCompletion sends a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, options ...Option) (*Response, error) {
	req := Request{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   8192,
	}
	for _, opt := range options {
		opt(&req)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Complete runs a single system+user turn and returns the text
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, options ...Option) (string, error) {
	resp, err := c.ChatCompletion(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, options...)
	if err != nil {
		return "", err
	}
	return resp.Content()
}

// StructuredCompletion asks for schema-constrained JSON and returns it raw
func (c *Client) StructuredCompletion(ctx context.Context, systemPrompt, userPrompt, schemaName, schemaDescription string, schema map[string]interface{}, options ...Option) (string, error) {
	options = append(options, WithJSONSchema(schemaName, schemaDescription, schema))
	return c.Complete(ctx, systemPrompt, userPrompt, options...)
}

// JSONCompletion asks for JSON without a schema, for models that reject json_schema
func (c *Client) JSONCompletion(ctx context.Context, systemPrompt, userPrompt string, options ...Option) (string, error) {
	systemPrompt += "\n\nYou MUST respond with valid JSON only. Do not include markdown formatting, code blocks or explanatory text."
	options = append(options, WithJSONMode())
	return c.Complete(ctx, systemPrompt, userPrompt, options...)
}
