// Package localllm talks to any OpenAI-compatible chat completion endpoint,
// including OpenAI itself and local servers such as LM Studio or Ollama.
package localllm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Client represents a client for an OpenAI-compatible model.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewClient creates a new client. An empty baseURL targets the OpenAI API.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: 1500,
	}
}

// GenerateContent sends a prompt and returns the first choice's content.
// The model is asked for a JSON object response. Temperature is left to
// the server default.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an expert nutritional meal and grocery list planner. Reply with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:      c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return resp.Choices[0].Message.Content, nil
}
