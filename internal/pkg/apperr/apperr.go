// Package apperr classifies failures so that handler boundaries can pick a
// reply without inspecting every sentinel.
package apperr

import "errors"

// Kind is the failure class.
type Kind int

const (
	// Unknown is any error not wrapped by this package.
	Unknown Kind = iota
	// UserInput covers bad uploads, missing photos and malformed admin commands.
	// Always shown to the user, never logged as a bug.
	UserInput
	// Collaborator covers OCR, storage, transport and third-party API failures.
	Collaborator
	// StateConflict covers decisions on resolved reviews and moves on finished games.
	StateConflict
	// Configuration covers missing credentials for optional integrations.
	Configuration
)

func (k Kind) String() string {
	switch k {
	case UserInput:
		return "user_input"
	case Collaborator:
		return "collaborator"
	case StateConflict:
		return "state_conflict"
	case Configuration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind. A nil err stays nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
