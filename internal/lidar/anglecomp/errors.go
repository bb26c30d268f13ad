package anglecomp

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame is returned when a reply does not have the expected
	// shape: the wrong number of tokens, or a binary payload too short to
	// hold the three values.
	ErrMalformedFrame = errors.New("malformed angle compensation reply")

	// ErrInvalidNumericLiteral is returned when a value token is neither a
	// signed decimal nor a hexadecimal integer.
	ErrInvalidNumericLiteral = errors.New("invalid numeric literal in angle compensation reply")
)

// FrameError describes a reply rejected for its shape.
type FrameError struct {
	Binary bool // Rejected before tokenising, Count is a byte count
	Count  int  // Tokens found, or bytes for binary payloads
	Want   int
}

func (e *FrameError) Error() string {
	if e.Binary {
		return fmt.Sprintf("%v: binary payload has %d bytes, need at least %d", ErrMalformedFrame, e.Count, e.Want)
	}
	return fmt.Sprintf("%v: got %d tokens, expected %d", ErrMalformedFrame, e.Count, e.Want)
}

func (e *FrameError) Is(target error) bool { return target == ErrMalformedFrame }

// LiteralError describes a value token that failed to parse.
type LiteralError struct {
	Field string
	Token string
	Err   error
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("%v: %s token %q: %v", ErrInvalidNumericLiteral, e.Field, e.Token, e.Err)
}

func (e *LiteralError) Is(target error) bool { return target == ErrInvalidNumericLiteral }

func (e *LiteralError) Unwrap() error { return e.Err }
