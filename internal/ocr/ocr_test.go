package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	fragments []string
	err       error
	delay     time.Duration
	gotMIME   string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, _ []byte, mimeType string) ([]string, error) {
	f.gotMIME = mimeType
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.fragments, f.err
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really an image"), 0o600))
	return path
}

func TestExtractText_JoinsFragments(t *testing.T) {
	rec := &fakeRecognizer{fragments: []string{"Paid via GPay ", "", " 9876543210@ybl", "Rs.500"}}
	e := NewExtractor(rec, time.Second)

	text, err := e.ExtractText(context.Background(), writeImage(t, "shot.png"))
	require.NoError(t, err)
	assert.Equal(t, "Paid via GPay 9876543210@ybl Rs.500", text)
	assert.Equal(t, "image/png", rec.gotMIME)
}

func TestExtractText_RecognizerErrorIsEmpty(t *testing.T) {
	e := NewExtractor(&fakeRecognizer{err: errors.New("model overloaded")}, time.Second)

	text, err := e.ExtractText(context.Background(), writeImage(t, "shot.jpg"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_Timeout(t *testing.T) {
	e := NewExtractor(&fakeRecognizer{delay: time.Second}, 20*time.Millisecond)

	_, err := e.ExtractText(context.Background(), writeImage(t, "shot.jpg"))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExtractText_UnreadableFile(t *testing.T) {
	e := NewExtractor(&fakeRecognizer{}, time.Second)

	_, err := e.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestExtractText_Disabled(t *testing.T) {
	e := NewExtractor(nil, time.Second)
	assert.False(t, e.Enabled())

	text, err := e.ExtractText(context.Background(), "does-not-matter.jpg")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", MIMEType("a.JPG"))
	assert.Equal(t, "image/webp", MIMEType("a.webp"))
	assert.Equal(t, "image/jpeg", MIMEType("no-extension"))
}

func TestGeminiRecognizer(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "Paid to\n  merchant@okaxis \n\nRs 250"}},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	rec, err := NewGeminiRecognizer(context.Background(), GeminiOptions{
		APIKey:     "test",
		Model:      "test-model",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	fragments, err := rec.Recognize(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paid to", "merchant@okaxis", "Rs 250"}, fragments)

	raw, _ := json.Marshal(gotBody)
	assert.True(t, strings.Contains(string(raw), "image/jpeg"), "request carries the inline image")
}

func TestGeminiRecognizer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	rec, err := NewGeminiRecognizer(context.Background(), GeminiOptions{
		APIKey:     "test",
		Model:      "test-model",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	e := NewExtractor(rec, 5*time.Second)
	text, err := e.ExtractText(context.Background(), writeImage(t, "shot.jpg"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNewGeminiRecognizer_RequiresKey(t *testing.T) {
	_, err := NewGeminiRecognizer(context.Background(), GeminiOptions{Model: "m"})
	assert.Error(t, err)
}
