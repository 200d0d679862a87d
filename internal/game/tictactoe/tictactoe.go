// Package tictactoe implements a 3x3 Tic-Tac-Toe board where the user plays
// X and the bot answers as O with a greedy policy.
package tictactoe

import (
	"errors"
	"math/rand/v2"
	"strings"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// Cell is the content of one square.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "_"
	}
}

// Outcome is the state of a board.
type Outcome int

const (
	InProgress Outcome = iota
	WinX
	WinO
	Tie
)

// Terminal reports whether no further moves are accepted.
func (o Outcome) Terminal() bool {
	return o != InProgress
}

// Message is the verdict line shown under a finished board.
func (o Outcome) Message() string {
	switch o {
	case WinX:
		return "You win! 🎉"
	case WinO:
		return "I win! 🎉"
	case Tie:
		return "It's a tie! 🤝"
	default:
		return ""
	}
}

// Result is the value recorded in the games log.
func (o Outcome) Result() string {
	switch o {
	case WinX:
		return "win"
	case WinO:
		return "loss"
	case Tie:
		return "tie"
	default:
		return "in_progress"
	}
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

var corners = [4]int{0, 2, 6, 8}

// Board holds cells in row-major order; index 0 is position 1.
type Board [9]Cell

// Winner returns the mark that owns a full line, or Empty.
func (b Board) Winner() Cell {
	for _, l := range lines {
		if c := b[l[0]]; c != Empty && c == b[l[1]] && c == b[l[2]] {
			return c
		}
	}
	return Empty
}

// Full reports whether every cell is taken.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Outcome evaluates the board.
func (b Board) Outcome() Outcome {
	switch b.Winner() {
	case X:
		return WinX
	case O:
		return WinO
	}
	if b.Full() {
		return Tie
	}
	return InProgress
}

// completes returns the first empty index, in row-major order, at which
// mark would complete a line, or -1.
func (b Board) completes(mark Cell) int {
	for i, c := range b {
		if c != Empty {
			continue
		}
		b[i] = mark
		won := b.Winner() == mark
		b[i] = Empty
		if won {
			return i
		}
	}
	return -1
}

// BotMove picks O's reply: win, else block, else center, else a random
// open corner, else the first open cell. It returns -1 on a full board.
// A nil rng uses the shared source.
func (b Board) BotMove(rng *rand.Rand) int {
	if i := b.completes(O); i >= 0 {
		return i
	}
	if i := b.completes(X); i >= 0 {
		return i
	}
	if b[4] == Empty {
		return 4
	}

	open := make([]int, 0, len(corners))
	for _, i := range corners {
		if b[i] == Empty {
			open = append(open, i)
		}
	}
	if len(open) > 0 {
		if rng == nil {
			return open[rand.IntN(len(open))]
		}
		return open[rng.IntN(len(open))]
	}

	for i, c := range b {
		if c == Empty {
			return i
		}
	}
	return -1
}

// Move plays X at pos (1..9) and, if the game goes on, O's reply.
// It returns the new board, O's index (or -1 when O did not move) and the
// resulting outcome. On error the board is returned unchanged.
func (b Board) Move(pos int, rng *rand.Rand) (Board, int, Outcome, error) {
	if b.Outcome().Terminal() {
		return b, -1, b.Outcome(), ErrGameOver
	}
	if pos < 1 || pos > 9 || b[pos-1] != Empty {
		return b, -1, InProgress, ErrIllegalMove
	}

	next := b
	next[pos-1] = X
	if out := next.Outcome(); out.Terminal() {
		return next, -1, out, nil
	}

	reply := next.BotMove(rng)
	next[reply] = O
	return next, reply, next.Outcome(), nil
}

// Render draws the board with its header.
func (b Board) Render() string {
	var sb strings.Builder
	sb.WriteString("🎮 Tic Tac Toe\n\n")
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cells[col] = b[row*3+col].String()
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
		if row < 2 {
			sb.WriteString("---------\n")
		}
	}
	return sb.String()
}
