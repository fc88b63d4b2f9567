package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultAPIURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel  = "gpt-4o-mini"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequestBody struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponseBody struct {
	Choices []chatChoice `json:"choices"`
}

// Client talks to an OpenAI compatible chat completions endpoint.
type Client struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
}

// NewClient returns nil when apiKey is empty, which turns the feature off.
func NewClient(apiURL, apiKey, model string) *Client {
	if apiKey == "" {
		return nil
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{},
	}
}

// Enhance makes a single round trip to the model. Any failure is returned
// as is; there is no partial result.
func (c *Client) Enhance(ctx context.Context, in Input) (*Output, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequestBody{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("non-200 response from model API: %d; response: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var responseBody chatResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if len(responseBody.Choices) == 0 {
		return nil, errors.New("no completions returned")
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("no content in response message")
	}

	var out Output
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := validateOutput(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
