package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// Category groups error codes.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryNavigation Category = "navigation"
	CategoryLoad       Category = "load"
	CategoryProject    Category = "project"
	CategoryCLI        Category = "cli"
)

// Location is a position in a source or configuration file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded error with location, hints and documentation.
type Error struct {
	// Code is the registered error code (e.g., "R020").
	Code string

	// Category is the error group.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred, if known.
	Location *Location

	// Context holds the lines around Location.
	Context []string

	// contextFrom is the line number of Context[0].
	contextFrom int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL links to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// ErrorCode returns the registered code.
func (e *Error) ErrorCode() string {
	return e.Code
}

// WithLocation sets the location and reads the surrounding lines from file.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.contextFrom = readContextLines(file, line, 2)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads up to radius lines on each side of line and returns
// them with the number of the first one.
func readContextLines(filename string, line, radius int) ([]string, int) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer f.Close()

	from := max(line-radius, 1)
	var lines []string
	scanner := bufio.NewScanner(f)
	for n := 1; n <= line+radius && scanner.Scan(); n++ {
		if n >= from {
			lines = append(lines, scanner.Text())
		}
	}
	return lines, from
}

// New creates an Error from a registered code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// coder is implemented by the typed errors of the vroute packages.
type coder interface {
	ErrorCode() string
}

// FromError wraps err in an Error. The code comes from the first error in
// err's tree that has an ErrorCode method, or fallback when none does.
func FromError(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	code := fallback
	var c coder
	if stderrors.As(err, &c) && c.ErrorCode() != "" {
		code = c.ErrorCode()
	}
	return New(code).Wrap(err)
}

// causes lists the individual errors of an aggregate such as
// router.TableError, or nil for a single error.
func causes(err error) []string {
	multi, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []string
	for _, e := range multi.Unwrap() {
		out = append(out, strings.TrimSpace(e.Error()))
	}
	return out
}
