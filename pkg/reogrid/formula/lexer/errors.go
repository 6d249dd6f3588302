package lexer

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates the input contains a character no rule recognizes.
var ErrSyntax = errors.New("formula syntax error")

// ErrNoRules indicates a grammar was compiled from an empty rule list.
var ErrNoRules = errors.New("grammar has no rules")

// ErrDuplicateRule indicates two rules share a group name.
var ErrDuplicateRule = errors.New("duplicate rule name")

// ParseError reports where tokenization of a formula stopped.
type ParseError struct {
	Input  string
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d in %q", ErrSyntax, e.Offset, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// NewParseError creates a new ParseError.
func NewParseError(input string, offset int) *ParseError {
	return &ParseError{
		Input:  input,
		Offset: offset,
	}
}
