package grid

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by grid operations.
var (
	// ErrNoColumns is returned when a grid is compiled without columns.
	ErrNoColumns = errors.New("grid: no column definitions")

	// ErrNilTemplate is returned when a column definition has no template.
	ErrNilTemplate = errors.New("grid: column template is nil")

	// ErrNotCompiled is returned when rows are requested before compilation.
	ErrNotCompiled = errors.New("grid: row skeleton not compiled")

	// ErrRowContextLocked is returned when the row context is rebound or
	// mutated while a row snapshot is in flight.
	ErrRowContextLocked = errors.New("grid: row context locked by in-flight snapshot")

	// ErrReentrantMaterialize is returned when materialization is started
	// from inside another materialization.
	ErrReentrantMaterialize = errors.New("grid: re-entrant materialization")

	// ErrUnbound is returned when mutating a row context with no bound item.
	ErrUnbound = errors.New("grid: row context has no bound item")

	// ErrIndexOutOfRange is returned for row or column indices outside the grid.
	ErrIndexOutOfRange = errors.New("grid: index out of range")

	// ErrMalformedSortResult is returned by ApplySortResult for unusable input.
	ErrMalformedSortResult = errors.New("grid: malformed sort result")

	// ErrInvalidWidth is returned for negative column widths.
	ErrInvalidWidth = errors.New("grid: invalid column width")
)

// TemplateError reports a column template that failed while rendering the
// row skeleton. No row is produced for the item being materialized.
type TemplateError struct {
	Column int    // Column position
	Key    string // Column key
	Row    int    // Row being materialized, or -1 outside materialization
	Err    error  // Underlying error or recovered panic
}

// Error returns the error message with column and row context.
func (e *TemplateError) Error() string {
	if e.Row < 0 {
		if e.Key == "" {
			return fmt.Sprintf("grid: template for column %d failed: %v", e.Column, e.Err)
		}
		return fmt.Sprintf("grid: template for column %d (%s) failed: %v", e.Column, e.Key, e.Err)
	}
	if e.Key == "" {
		return fmt.Sprintf("grid: template for column %d failed at row %d: %v", e.Column, e.Row, e.Err)
	}
	return fmt.Sprintf("grid: template for column %d (%s) failed at row %d: %v", e.Column, e.Key, e.Row, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *TemplateError) Unwrap() error {
	return e.Err
}
