package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default public endpoints.
const (
	DefaultQuoteURL = "https://api.quotable.io/random"
	DefaultJokeURL  = "https://official-joke-api.appspot.com/jokes/random"
	DefaultFactURL  = "https://uselessfacts.jsph.pl/random.json?language=en"
)

// HTTPSource fetches quotes, jokes and facts from public JSON APIs.
// An empty URL disables that kind.
type HTTPSource struct {
	httpClient *http.Client
	quoteURL   string
	jokeURL    string
	factURL    string
}

// NewHTTPSource creates a source with the given endpoints.
func NewHTTPSource(quoteURL, jokeURL, factURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		httpClient: &http.Client{Timeout: timeout},
		quoteURL:   quoteURL,
		jokeURL:    jokeURL,
		factURL:    factURL,
	}
}

func (s *HTTPSource) getJSON(ctx context.Context, url string, v any) error {
	if url == "" {
		return ErrDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content api %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode content response: %w", err)
	}
	return nil
}

// Quote fetches {"content", "author"}.
func (s *HTTPSource) Quote(ctx context.Context) (*Quote, error) {
	var body struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := s.getJSON(ctx, s.quoteURL, &body); err != nil {
		return nil, err
	}
	if body.Content == "" {
		return nil, fmt.Errorf("empty quote from %s", s.quoteURL)
	}
	return &Quote{Text: body.Content, Author: body.Author, Category: "random"}, nil
}

// Joke fetches {"setup", "punchline"}.
func (s *HTTPSource) Joke(ctx context.Context) (string, error) {
	var body struct {
		Setup     string `json:"setup"`
		Punchline string `json:"punchline"`
	}
	if err := s.getJSON(ctx, s.jokeURL, &body); err != nil {
		return "", err
	}
	if body.Setup == "" {
		return "", fmt.Errorf("empty joke from %s", s.jokeURL)
	}
	return body.Setup + "\n\n" + body.Punchline, nil
}

// Fact fetches {"text"}.
func (s *HTTPSource) Fact(ctx context.Context) (string, error) {
	var body struct {
		Text string `json:"text"`
	}
	if err := s.getJSON(ctx, s.factURL, &body); err != nil {
		return "", err
	}
	return body.Text, nil
}
