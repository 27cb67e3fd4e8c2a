package errors

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	stdErrors "errors"
	"fmt"
	"regexp"
	"strconv"
)

// ParseError reports a document that could not be decoded. Line and Column
// are 1-based and zero when the decoder gave no position.
type ParseError struct {
	Source string
	Line   int
	Column int
	Err    error
}

var linePattern = regexp.MustCompile(`\bline (\d+)`)

// NewParseError wraps err and locates it in data when the decoder reports a
// position: a JSON byte offset, an XML line, or the "line N" that yaml.v3
// writes into its messages. data may be nil.
func NewParseError(source string, data []byte, err error) error {
	e := &ParseError{Source: source, Err: err}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var xmlErr *xml.SyntaxError
	switch {
	case err == nil:
	case stdErrors.As(err, &syntaxErr):
		e.Line, e.Column = position(data, syntaxErr.Offset)
	case stdErrors.As(err, &typeErr):
		e.Line, e.Column = position(data, typeErr.Offset)
	case stdErrors.As(err, &xmlErr):
		e.Line = xmlErr.Line
	default:
		if m := linePattern.FindStringSubmatch(err.Error()); m != nil {
			e.Line, _ = strconv.Atoi(m[1])
		}
	}
	return e
}

// position converts a byte offset into a line and column.
func position(data []byte, offset int64) (int, int) {
	if data == nil || offset <= 0 {
		return 0, 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	head := data[:offset]
	line := bytes.Count(head, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(head, '\n') - 1
	return line, col
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	where := e.Source
	switch {
	case e.Line > 0 && e.Column > 0:
		where = fmt.Sprintf("%s:%d:%d", e.Source, e.Line, e.Column)
	case e.Line > 0:
		where = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	return fmt.Sprintf("parse error: %s: %v", where, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures settings, layout and widget option issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FetchError represents a failed call to a remote feed or API. Status is the
// HTTP status code when a response was received, zero otherwise.
type FetchError struct {
	Source string
	Status int
	Err    error
}

// NewFetchError constructs a FetchError for the given source.
func NewFetchError(source string, status int, err error) error {
	return &FetchError{Source: source, Status: status, Err: err}
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch error [%s]: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch error [%s]: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
