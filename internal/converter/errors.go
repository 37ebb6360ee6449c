package converter

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/csvparser"
)

var (
	// ErrDocument is wrapped by failures of the spreadsheet document itself,
	// such as a table wider than a worksheet allows.
	ErrDocument = errors.New("converter: cannot build document")

	// ErrSkipped is reported for batch inputs that were not converted
	// because an earlier file failed and ContinueOnError is off.
	ErrSkipped = errors.New("converter: skipped after an earlier failure")
)

// IOError reports a failure to read the source, stage it, or write the
// destination.
type IOError struct {
	Op   string // "open", "read", "stage", "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldCountMismatchError reports a record whose width differs from the
// header's under the FailFast policy.
type FieldCountMismatchError struct {
	Row  int // 1-based data record index
	Line int // input line where the record started
	Want int
	Got  int
}

func (e *FieldCountMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("record %d (line %d) has %d fields, header has %d", e.Row, e.Line, e.Got, e.Want)
}

// classify returns err unchanged when it already belongs to the error
// taxonomy and wraps it in an *IOError otherwise.
func classify(err error, op, path string) error {
	if err == nil {
		return nil
	}

	var (
		parseErr     *csvparser.ParseError
		malformedErr *csvparser.MalformedInputError
		mismatchErr  *FieldCountMismatchError
		ioErr        *IOError
	)
	switch {
	case errors.As(err, &parseErr),
		errors.As(err, &malformedErr),
		errors.As(err, &mismatchErr),
		errors.As(err, &ioErr),
		errors.Is(err, ErrDocument),
		errors.Is(err, csvparser.ErrInvalidDialect),
		errors.Is(err, csvparser.ErrUnsupportedEncoding):
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// ErrorType names the category of a conversion error for reports.
func ErrorType(err error) string {
	var (
		parseErr     *csvparser.ParseError
		malformedErr *csvparser.MalformedInputError
		mismatchErr  *FieldCountMismatchError
		ioErr        *IOError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &malformedErr):
		return "encoding"
	case errors.As(err, &mismatchErr):
		return "field_count"
	case errors.As(err, &ioErr):
		return "io"
	case errors.Is(err, ErrSkipped):
		return "skipped"
	case errors.Is(err, csvparser.ErrInvalidDialect), errors.Is(err, csvparser.ErrUnsupportedEncoding):
		return "config"
	default:
		return "document"
	}
}

// ErrorLine returns the input line an error points at, or 0.
func ErrorLine(err error) int {
	var (
		parseErr    *csvparser.ParseError
		mismatchErr *FieldCountMismatchError
	)
	switch {
	case errors.As(err, &parseErr):
		return parseErr.Line
	case errors.As(err, &mismatchErr):
		return mismatchErr.Line
	}
	return 0
}
