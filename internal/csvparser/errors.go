package csvparser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedQuote is returned when a quoted field is still open at end of input.
	ErrUnterminatedQuote = errors.New("csvparser: unterminated quoted field")
	// ErrBareQuote is returned when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("csvparser: bare quote in non-quoted field")
	// ErrQuoteTrail is returned when a closing quote is followed by anything
	// other than a delimiter or a line break.
	ErrQuoteTrail = errors.New("csvparser: unexpected character after closing quote")
	// ErrMissingHeader is returned when a header is declared but the input is empty.
	ErrMissingHeader = errors.New("csvparser: header declared but input is empty")
	// ErrUnsupportedEncoding is returned for encoding labels that cannot be resolved.
	ErrUnsupportedEncoding = errors.New("csvparser: unsupported encoding")
)

// ParseError reports malformed delimited text together with its position.
// Lines and columns are 1-based; columns count characters, not bytes.
type ParseError struct {
	StartLine int // line where the record started
	Line      int
	Column    int
	Err       error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.StartLine != 0 && e.StartLine != e.Line {
		return fmt.Sprintf("parse error on line %d (record started on line %d), column %d: %v", e.Line, e.StartLine, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MalformedInputError reports input bytes that are not valid in the
// configured text encoding. Offset is the position of the first offending
// byte, counted from the start of the stream.
type MalformedInputError struct {
	Offset   int64
	Encoding string
	Err      error
}

func (e *MalformedInputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("malformed %s input at byte offset %d: %v", e.Encoding, e.Offset, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
