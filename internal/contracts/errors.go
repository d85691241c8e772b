package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema marks a required column missing from an input table
	ErrSchema = errors.New("schema error")

	// ErrEmptyInput marks an input table, or a post-filter table, with zero rows
	ErrEmptyInput = errors.New("empty input")
)

// SchemaError is returned before any transform runs when required columns are absent
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in %s: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Unwrap allows errors.Is(err, ErrSchema)
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// EmptyInputError aborts a run when no rows are left to compute from
type EmptyInputError struct {
	Table  string
	Stage  Stage
	Reason string
}

func (e *EmptyInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Stage.ShortName(), e.Reason)
	}
	return fmt.Sprintf("%s dataset is empty", e.Table)
}

// Unwrap allows errors.Is(err, ErrEmptyInput)
func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// IsInputError reports whether err is a schema or empty-input failure
// (caller-side data problem rather than an infrastructure fault)
func IsInputError(err error) bool {
	return errors.Is(err, ErrSchema) || errors.Is(err, ErrEmptyInput)
}
