package schema

import (
	"fmt"
	"strings"
)

// SchemaError means the source is missing one or more required columns.
// The load is aborted and no table is returned.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("missing required column(s) in %s: %s", e.Source, strings.Join(e.Missing, ", "))
}

// EmptyScopeError means a filter selected no responses.
type EmptyScopeError struct {
	Partner string
}

func (e *EmptyScopeError) Error() string {
	if e.Partner == "" {
		return "no data: the table has no responses"
	}
	return fmt.Sprintf("no data for partner %q", e.Partner)
}

// ExportError means writing an output file failed. In-memory state is untouched.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
