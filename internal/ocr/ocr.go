// Package ocr turns payment screenshots into plain text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	recognitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paybot",
		Subsystem: "ocr",
		Name:      "recognitions_total",
		Help:      "Text recognitions by outcome.",
	}, []string{"outcome"})

	recognitionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paybot",
		Subsystem: "ocr",
		Name:      "recognition_duration_seconds",
		Help:      "Latency of text recognition calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// ErrTimeout is returned when recognition does not finish in time.
var ErrTimeout = errors.New("text recognition timed out")

// Recognizer returns the text fragments found in an image, in reading order.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) ([]string, error)
}

// Extractor reads image files and runs them through a Recognizer.
type Extractor struct {
	recognizer Recognizer
	timeout    time.Duration
}

// NewExtractor creates an Extractor. A nil recognizer disables recognition
// and every call yields empty text.
func NewExtractor(r Recognizer, timeout time.Duration) *Extractor {
	return &Extractor{recognizer: r, timeout: timeout}
}

// Enabled reports whether a recognizer is configured.
func (e *Extractor) Enabled() bool {
	return e != nil && e.recognizer != nil
}

// ExtractText returns the recognized text of the image at path, fragments
// joined by single spaces. Recognizer failures are logged and produce empty
// text. Only an unreadable file or a timeout is returned as an error.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if !e.Enabled() {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		recognitionsTotal.WithLabelValues("unreadable").Inc()
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	fragments, err := e.recognizer.Recognize(ctx, data, MIMEType(path))
	recognitionSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			recognitionsTotal.WithLabelValues("timeout").Inc()
			return "", ErrTimeout
		}
		recognitionsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("path", path).Msg("Text recognition failed, treating as empty")
		return "", nil
	}

	text := Join(fragments)
	if text == "" {
		recognitionsTotal.WithLabelValues("empty").Inc()
	} else {
		recognitionsTotal.WithLabelValues("ok").Inc()
	}
	return text, nil
}

// Join concatenates fragments with single spaces, dropping blank ones.
func Join(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// MIMEType guesses the image type from the file extension, defaulting to JPEG.
func MIMEType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "image/jpeg"
}
