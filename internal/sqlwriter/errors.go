package sqlwriter

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotBegun is returned when a statement is written before Begin
	ErrNotBegun = errors.New("sqlwriter: transaction not begun")
	// ErrAlreadyBegun is returned when Begin is called twice
	ErrAlreadyBegun = errors.New("sqlwriter: transaction already begun")
	// ErrWriterClosed is returned by every call after Commit or Abort
	ErrWriterClosed = errors.New("sqlwriter: writer closed")
	// ErrInvalidIdentifier is returned for table or column names that are not plain identifiers
	ErrInvalidIdentifier = errors.New("sqlwriter: invalid identifier")
)

// SchemaMismatchError reports a row that lacks a declared column
type SchemaMismatchError struct {
	Table  string
	Row    int
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("sqlwriter: table %s row %d is missing column %q", e.Table, e.Row, e.Column)
}

// ValueError reports a value that cannot be rendered as a SQL literal
type ValueError struct {
	Table  string
	Row    int
	Column string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("sqlwriter: table %s row %d column %s: %v", e.Table, e.Row, e.Column, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}
