// Package dice implements the two-dice roll.
package dice

import (
	"fmt"

	"upi-pay-bot/internal/game"
)

// Faces maps a die value 1..6 to its glyph.
var Faces = [7]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// Roll is the outcome of one throw of two dice.
type Roll struct {
	Die1 int
	Die2 int
}

// Total returns the sum of both dice.
func (r Roll) Total() int {
	return r.Die1 + r.Die2
}

// Text renders the roll as shown to the player.
func (r Roll) Text() string {
	return fmt.Sprintf("🎲 Dice Roll\n\n%s + %s = %d\n\nRoll again?", Faces[r.Die1], Faces[r.Die2], r.Total())
}

// DiceGame implements game.Game. It takes no choice.
type DiceGame struct {
	intn game.IntN
}

// New creates a DiceGame. A nil intn uses game.DefaultIntN.
func New(intn game.IntN) *DiceGame {
	if intn == nil {
		intn = game.DefaultIntN
	}
	return &DiceGame{intn: intn}
}

// Name returns the game's display name.
func (d *DiceGame) Name() string {
	return "Dice Roll"
}

// Command returns the command that triggers this game.
func (d *DiceGame) Command() string {
	return "dice"
}

// Intro is the same as a fresh roll; dice has no choice panel.
func (d *DiceGame) Intro() string {
	return "🎲 Dice Roll"
}

// Choices returns nil.
func (d *DiceGame) Choices() []string {
	return nil
}

// Throw rolls both dice.
func (d *DiceGame) Throw() Roll {
	return Roll{Die1: d.intn(6) + 1, Die2: d.intn(6) + 1}
}

// Play rolls both dice. Any non-empty choice is rejected.
func (d *DiceGame) Play(choice string) (*game.Result, error) {
	if choice != "" {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidChoice, choice)
	}
	r := d.Throw()
	return &game.Result{Outcome: game.OutcomeRoll, Text: r.Text()}, nil
}
