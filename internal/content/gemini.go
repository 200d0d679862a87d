package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiGenerator answers prompts with a Gemini text model.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator. An empty apiKey returns ErrDisabled.
// baseURL and httpClient may be empty to use the public endpoint.
func NewGeminiGenerator(ctx context.Context, apiKey, model, baseURL string, httpClient *http.Client) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL, APIVersion: "v1beta"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Fetch generates a reply for prompt.
func (g *GeminiGenerator) Fetch(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if result == nil {
		return "", errors.New("no response generated")
	}
	return result.Text()
}
