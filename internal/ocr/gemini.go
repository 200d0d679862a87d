package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = `Transcribe every piece of text visible in this payment screenshot.
Output one line per text block in reading order, top to bottom.
Do not add commentary, labels or formatting.`

// GeminiRecognizer recognizes text with a Gemini multimodal model.
type GeminiRecognizer struct {
	client *genai.Client
	model  string
}

// GeminiOptions configures NewGeminiRecognizer. BaseURL and HTTPClient are
// only needed to point the client at a non-default endpoint.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewGeminiRecognizer creates a recognizer backed by the Gemini API.
func NewGeminiRecognizer(ctx context.Context, opts GeminiOptions) (*GeminiRecognizer, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL, APIVersion: "v1beta"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiRecognizer{client: client, model: opts.Model}, nil
}

// Recognize sends the image inline and splits the transcription into lines.
func (g *GeminiRecognizer) Recognize(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
		},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if result == nil {
		return nil, errors.New("no response generated")
	}
	text, err := result.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract response text: %w", err)
	}

	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fragments = append(fragments, line)
		}
	}
	return fragments, nil
}
