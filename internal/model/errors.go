package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedStatement is returned when input ends before a started
	// call reaches its terminator.
	ErrUnterminatedStatement = errors.New("unterminated statement")
	// ErrMalformedArgumentList is returned when a call has no format argument.
	ErrMalformedArgumentList = errors.New("malformed argument list")
	// ErrUnbalancedInterleave flags a format whose specifier count is far from
	// the number of values supplied.
	ErrUnbalancedInterleave = errors.New("unbalanced interleave")
)

// UnterminatedStatementError carries the partial buffer of a call that never
// reached its terminator.
type UnterminatedStatementError struct {
	Line    int
	Partial string
}

func (e *UnterminatedStatementError) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, ErrUnterminatedStatement, e.Partial)
}

func (e *UnterminatedStatementError) Unwrap() error { return ErrUnterminatedStatement }

// MalformedArgumentListError identifies a statement whose argument list lacks
// a format string.
type MalformedArgumentListError struct {
	Line      int
	Statement string
	Tokens    int
}

func (e *MalformedArgumentListError) Error() string {
	return fmt.Sprintf("line %d: %v (%d arguments): %s", e.Line, ErrMalformedArgumentList, e.Tokens, e.Statement)
}

func (e *MalformedArgumentListError) Unwrap() error { return ErrMalformedArgumentList }

// UnbalancedInterleaveError reports fragment and value counts that differ by
// more than one.
type UnbalancedInterleaveError struct {
	Line      int
	Statement string
	Fragments int
	Values    int
}

func (e *UnbalancedInterleaveError) Error() string {
	return fmt.Sprintf("line %d: %v: %d literal fragments for %d values: %s",
		e.Line, ErrUnbalancedInterleave, e.Fragments, e.Values, e.Statement)
}

func (e *UnbalancedInterleaveError) Unwrap() error { return ErrUnbalancedInterleave }
