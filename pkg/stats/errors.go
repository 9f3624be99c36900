package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrLayoutMismatch means the token sequence did not fit the resolved layout.
	ErrLayoutMismatch = errors.New("token sequence does not match layout")
	// ErrCoercion means a token passed the numeric pattern but could not be parsed.
	ErrCoercion = errors.New("token coercion failed")
	// ErrDivisionPrecondition is returned when base attack is zero.
	ErrDivisionPrecondition = errors.New("base attack is zero")
	// ErrBadBuff is returned for malformed <stat>=<value> buff flags.
	ErrBadBuff = errors.New("malformed buff")
)

// ParseError reports which field could not be read from the token sequence.
type ParseError struct {
	Field    Field
	Position int
	Tokens   int
	Token    string
	Err      error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrCoercion) {
		return fmt.Sprintf("field %s: token %q at position %d: %v", e.Field, e.Token, e.Position, e.Err)
	}
	return fmt.Sprintf("field %s: position %d out of range (%d tokens): %v", e.Field, e.Position, e.Tokens, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
