package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryGrid   Category = "grid"
	CategoryData   Category = "data"
	CategoryExport Category = "export"
	CategoryServer Category = "server"
	CategoryCLI    Category = "cli"
)

// Location represents a position in a source file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// VgridError is a structured error with a code, location and suggestion.
type VgridError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	Location *Location

	// Context contains the source lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VgridError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VgridError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location and reads the surrounding lines.
func (e *VgridError) WithLocation(file string, line, column int) *VgridError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, contextRadius)
	return e
}

const contextRadius = 2

var yamlLine = regexp.MustCompile(`line (\d+)`)

// WithLocationFromYAML extracts the line number from a yaml.v3 error
// ("yaml: line 4: ...") and points at file.
func (e *VgridError) WithLocationFromYAML(file string, err error) *VgridError {
	if err == nil {
		return e
	}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if line, _ := strconv.Atoi(m[1]); line > 0 {
			return e.WithLocation(file, line, 0)
		}
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VgridError) WithSuggestion(s string) *VgridError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *VgridError) WithDetail(d string) *VgridError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VgridError) Wrap(err error) *VgridError {
	e.Wrapped = err
	return e
}

// readContextLines reads the lines within radius of targetLine.
func readContextLines(filename string, targetLine, radius int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < targetLine-radius {
			continue
		}
		if lineNum > targetLine+radius {
			break
		}
		lines = append(lines, scanner.Text())
	}
	return lines
}

// contextStart returns the line number of the first context line.
func (e *VgridError) contextStart() int {
	return max(1, e.Location.Line-contextRadius)
}

// New creates a VgridError from a registered error code.
func New(code string) *VgridError {
	template, ok := registry[code]
	if !ok {
		return &VgridError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VgridError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a VgridError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *VgridError {
	return &VgridError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a VgridError with code. Errors that already carry
// a VgridError are returned unchanged.
func FromError(err error, code string) *VgridError {
	if err == nil {
		return nil
	}
	var ve *VgridError
	if stderrors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}
