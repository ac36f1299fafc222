package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrOutOfBounds   = errors.New("out of bounds")
	ErrAlreadyFilled = errors.New("already taken")
	ErrGameOver      = errors.New("game is over")
	ErrInvalidPlan   = errors.New("invalid plan")
)

// MoveError is a rejected move. Every MoveError ends the game.
type MoveError struct {
	Kind    LossKind
	Message string
	Err     error
}

func (e *MoveError) Error() string {
	return e.Message
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func malformed(msg string) *MoveError {
	return &MoveError{Kind: MalformedOutput, Message: msg}
}

func outOfBounds(x, y int) *MoveError {
	return &MoveError{
		Kind:    OutOfBounds,
		Message: "Out of bounds.",
		Err:     fmt.Errorf("%w: [%d, %d]", ErrOutOfBounds, x, y),
	}
}

func alreadyFilled(x, y int) *MoveError {
	return &MoveError{
		Kind:    AlreadyFilled,
		Message: fmt.Sprintf("Position [%d, %d] already taken.", x, y),
		Err:     ErrAlreadyFilled,
	}
}
