// Package coin implements Head or Tails.
package coin

import (
	"fmt"

	"upi-pay-bot/internal/game"
)

// Sides of the coin.
const (
	Heads = "Heads"
	Tails = "Tails"
)

var sides = []string{Heads, Tails}

// Game implements game.Game.
type Game struct {
	intn game.IntN
}

// New creates a coin game. A nil intn uses game.DefaultIntN.
func New(intn game.IntN) *Game {
	if intn == nil {
		intn = game.DefaultIntN
	}
	return &Game{intn: intn}
}

func (g *Game) Name() string    { return "Head or Tails" }
func (g *Game) Command() string { return "coin" }
func (g *Game) Intro() string   { return "🎮 Head or Tails\n\nChoose your side:" }

func (g *Game) Choices() []string {
	return append([]string(nil), sides...)
}

// Flip returns the side that came up.
func (g *Game) Flip() string {
	return sides[g.intn(len(sides))]
}

// Play flips the coin against the player's call.
func (g *Game) Play(choice string) (*game.Result, error) {
	if choice != Heads && choice != Tails {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidChoice, choice)
	}
	return Outcome(choice, g.Flip()), nil
}

// Outcome renders a call against a flipped side.
func Outcome(choice, flipped string) *game.Result {
	res := &game.Result{Outcome: game.OutcomeLoss}
	verdict := "I win! 😎"
	if choice == flipped {
		res.Outcome = game.OutcomeWin
		verdict = "You win! 🎉"
	}
	res.Text = fmt.Sprintf("🎮 Head or Tails\n\nYou chose: %s\nResult: %s\n\n%s", choice, flipped, verdict)
	return res
}
