package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upi-pay-bot/internal/model"
)

type fakeFetcher struct {
	text   string
	err    error
	prompt string
}

func (f *fakeFetcher) Fetch(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func newTestLibrary(source Source, ai Fetcher) *Library {
	l := NewLibrary(source, ai)
	l.intn = func(int) int { return 0 }
	return l
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":"Be yourself.","author":"Oscar Wilde"}`))
	})
	mux.HandleFunc("/joke", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"setup":"Knock knock","punchline":"Who's there?"}`))
	})
	mux.HandleFunc("/fact", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Bananas are berries."}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	s := NewHTTPSource(srv.URL+"/quote", srv.URL+"/joke", srv.URL+"/fact", 0)

	q, err := s.Quote(ctx)
	require.NoError(t, err)
	assert.Equal(t, Quote{Text: "Be yourself.", Author: "Oscar Wilde", Category: "random"}, *q)

	j, err := s.Joke(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Knock knock\n\nWho's there?", j)

	f, err := s.Fact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bananas are berries.", f)

	broken := NewHTTPSource(srv.URL+"/broken", "", srv.URL+"/broken", 0)
	_, err = broken.Quote(ctx)
	assert.Error(t, err)
	_, err = broken.Joke(ctx)
	assert.True(t, errors.Is(err, ErrDisabled))

	lib := newTestLibrary(broken, nil)
	assert.Equal(t, Quotes[0], lib.Quote(ctx))
	assert.Equal(t, Jokes[0], lib.Joke(ctx))
	assert.Equal(t, Facts[0], lib.Fact(ctx))
}

func TestQuoteFormat(t *testing.T) {
	q := Quote{Text: "Stay hungry, stay foolish.", Author: "Steve Jobs"}
	assert.Equal(t, "💡 Daily Motivation\n\n\"Stay hungry, stay foolish.\"\n- Steve Jobs", q.Format())
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	ai := &fakeFetcher{text: "  Photosynthesis turns light into sugar.  "}
	assert.Equal(t, "Photosynthesis turns light into sugar.", newTestLibrary(nil, ai).Answer(ctx, "how does photosynthesis work"))

	failing := &fakeFetcher{err: errors.New("quota")}
	lib := newTestLibrary(nil, failing)
	assert.Equal(t, answerReplies[1].reply, lib.Answer(ctx, "What is UPI?"))
	assert.True(t, strings.HasPrefix(lib.Answer(ctx, "Tell me about Google"), "Google is"))
	assert.Equal(t, generalReplies[0], lib.Answer(ctx, "nice weather"))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	ai := &fakeFetcher{text: "Go is a programming language."}
	got := newTestLibrary(nil, ai).Search(ctx, "golang")
	assert.Equal(t, "🔍 Search Results for: golang\n\nGo is a programming language.", got)
	assert.Contains(t, ai.prompt, "golang")

	lib := newTestLibrary(nil, nil)
	assert.Equal(t, "🔍 Search Results for: Python tips\n\n"+searchReplies[2].reply, lib.Search(ctx, "Python tips"))
	assert.Contains(t, lib.Search(ctx, "zzz"), "placeholder response")
}

func TestSimilar(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, MsgSimilarUnavailable, newTestLibrary(nil, nil).Similar(ctx, "chess"))

	ai := &fakeFetcher{text: "Go\nShogi"}
	assert.Equal(t, "🔗 Similar to: chess\n\nGo\nShogi", newTestLibrary(nil, ai).Similar(ctx, "chess"))
}

func TestGeminiGenerator(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "gemini-2.0-flash", "", nil)
	assert.True(t, errors.Is(err, ErrDisabled))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"42"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "test-key", "gemini-2.0-flash", srv.URL, srv.Client())
	require.NoError(t, err)
	text, err := g.Fetch(context.Background(), "meaning of life")
	require.NoError(t, err)
	assert.Equal(t, "42", text)
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"How do I pay?", IntentPayment},
		{"let's play", IntentGame},
		{"I need inspiration", IntentQuote},
		{"send screenshot", IntentProof},
		{"help me", IntentHelp},
		{"show leaderboard", IntentStats},
		{"search golang", IntentSearch},
		{"who invented radio", IntentQuestion},
		{"anything comparable", IntentSimilar},
		{"hello", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.text))
		})
	}
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "quantum computing", SearchQuery("search quantum computing"))
	assert.Equal(t, "", SearchQuery("find"))
}

func TestRecommend(t *testing.T) {
	assert.Contains(t, Recommend(model.UserStats{}), "/games")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 1}), "/quote")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 1, QuotesRead: 1}), "/payments to generate")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 9, QuotesRead: 1, PaymentsRequested: 1}), "enjoy games")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 1, QuotesRead: 5, PaymentsRequested: 1}), "inspirational content")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 1, QuotesRead: 1, PaymentsRequested: 2, SuccessfulPayments: 3}), "premium user")
	assert.Contains(t, Recommend(model.UserStats{GamesPlayed: 2, QuotesRead: 2, PaymentsRequested: 2}), "enjoy games")
}
