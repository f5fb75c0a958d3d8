package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrEmptyResponse is returned when Gemini produces no text candidate.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// Client is a client for the Gemini API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client that answers in JSON.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	return &Client{client: client, model: m}, nil
}

// GenerateContent sends a prompt to the model and returns the generated text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return string(text), nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}
