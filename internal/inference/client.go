package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4-0125-preview"

	// completions are short structured replies, no need for more
	maxCompletionTokens = 60
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	BaseURL    string
	Model      string
	apiKey     string
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		// 3 requests per second keeps us well under the completion quota
		Limiter: rate.NewLimiter(rate.Every(333*time.Millisecond), 1),
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		apiKey:  apiKey,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one prompt and returns the raw reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return "", err
	}

	body := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a metadata extractor assistant."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxCompletionTokens,
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion API error: status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
