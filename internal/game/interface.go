// Package game defines the one-shot mini-games and their registry.
// Stateful games (Tic-Tac-Toe, Hangman) live in their own packages and are
// driven through the session manager.
package game

import (
	"errors"
	"math/rand/v2"
)

// ErrInvalidChoice is returned when Play receives a choice the game does not offer.
var ErrInvalidChoice = errors.New("invalid choice")

// Outcomes recorded in the games log.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeTie  = "tie"
	OutcomeRoll = "roll"
)

// Result is the outcome of a single play.
type Result struct {
	Outcome string // one of the Outcome constants
	Text    string // message shown to the player
}

// Game is a stateless single-shot game. Each Play samples independently.
type Game interface {
	// Name returns the display name, e.g. "Head or Tails".
	Name() string

	// Command returns the key the game is registered and logged under.
	Command() string

	// Intro returns the panel text shown before the first play.
	Intro() string

	// Choices lists the accepted choices. Games without a choice return nil
	// and are played with "".
	Choices() []string

	// Play runs one round.
	Play(choice string) (*Result, error)
}

// IntN returns a uniform int in [0, n). Games take one so tests can fix it.
type IntN func(n int) int

// DefaultIntN uses the shared math/rand/v2 source.
func DefaultIntN(n int) int { return rand.IntN(n) }

// Seeded returns an IntN backed by a deterministic PCG source.
func Seeded(seed uint64) IntN {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.IntN
}
