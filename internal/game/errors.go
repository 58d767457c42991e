// Package game implements the phase-structured game state machine:
// Initialize -> Draw -> Exchange -> Play, plus the GameState
// dispatch surface (register, kick, for_player, reset, interact) that is
// the only public handle onto a room's game value.
package game

import "fmt"

// ErrorKind discriminates the error taxonomy. Validation errors are
// returned to the originating caller as text; InvariantBreach errors
// indicate a bug and are logged by the caller before being turned into a
// generic message.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindInvariantBreach
)

func (k ErrorKind) String() string {
	if k == KindInvariantBreach {
		return "invariant_breach"
	}
	return "validation"
}

// GameError is the sum type every fallible game operation returns on
// failure; it never panics for an ordinary rule violation.
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &GameError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invariantErrorf(format string, args ...any) error {
	return &GameError{Kind: KindInvariantBreach, Message: fmt.Sprintf(format, args...)}
}
