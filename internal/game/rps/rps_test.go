package rps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"upi-pay-bot/internal/game"
)

func TestOutcomeTable(t *testing.T) {
	tests := []struct {
		user, bot string
		want      string
	}{
		{Rock, Scissors, game.OutcomeWin},
		{Paper, Rock, game.OutcomeWin},
		{Scissors, Paper, game.OutcomeWin},
		{Rock, Paper, game.OutcomeLoss},
		{Paper, Scissors, game.OutcomeLoss},
		{Scissors, Rock, game.OutcomeLoss},
		{Rock, Rock, game.OutcomeTie},
	}
	for _, tt := range tests {
		t.Run(tt.user+"_vs_"+tt.bot, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.user, tt.bot).Outcome)
		})
	}
}

func TestOutcomeText(t *testing.T) {
	res := Outcome(Rock, Paper)
	assert.Equal(t, "🎮 Rock Paper Scissors\n\nYou: ✊ Rock\nMe: ✋ Paper\n\nI win! 😎", res.Text)
}

func TestPlayRejectsUnknown(t *testing.T) {
	_, err := New(nil).Play("Lizard")
	assert.True(t, errors.Is(err, game.ErrInvalidChoice))
}

// Property: swapping sides turns a win into a loss and keeps ties.
func TestOutcomeSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SampledFrom(weapons).Draw(t, "a")
		b := rapid.SampledFrom(weapons).Draw(t, "b")
		ab, ba := Outcome(a, b).Outcome, Outcome(b, a).Outcome
		switch ab {
		case game.OutcomeTie:
			require.Equal(t, game.OutcomeTie, ba)
		case game.OutcomeWin:
			require.Equal(t, game.OutcomeLoss, ba)
		case game.OutcomeLoss:
			require.Equal(t, game.OutcomeWin, ba)
		}
	})
}
