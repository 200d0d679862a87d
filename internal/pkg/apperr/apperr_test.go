package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain", base, Unknown},
		{"user input", New(UserInput, "validate", base), UserInput},
		{"wrapped collaborator", fmt.Errorf("submit: %w", New(Collaborator, "ocr", base)), Collaborator},
		{"state conflict", New(StateConflict, "decide", base), StateConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNew_NilStaysNil(t *testing.T) {
	assert.NoError(t, New(Collaborator, "op", nil))
	assert.False(t, Is(nil, Collaborator))
}

func TestError_UnwrapsToSentinel(t *testing.T) {
	sentinel := errors.New("file too large")
	err := New(UserInput, "validate", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, Is(err, UserInput))
	assert.Equal(t, "validate: file too large", err.Error())
}
