package csvparser

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// =============================================================================
// DIALECT
// =============================================================================

// Dialect describes the lexical rules used to split delimited text into
// fields and records. A Dialect is a plain value: copy it, never share a
// pointer to one that is being modified.
type Dialect struct {
	// Comma is the field delimiter.
	// Default: ','
	Comma rune

	// Quote is the character that wraps fields containing delimiters,
	// line breaks or quotes. A quote inside a quoted field is written twice.
	// Default: '"'
	Quote rune

	// HeaderPresent reports whether the first record holds the column names.
	// When false, column names are synthesized as Column_1..Column_N.
	// Default: true
	HeaderPresent bool

	// SkipEmptyLines drops lines that contain no characters at all.
	// When false, an empty line is returned as a record with one empty field.
	// Default: true
	SkipEmptyLines bool

	// TrimSpace removes spaces and tabs surrounding each field.
	// Whitespace inside quotes is never trimmed.
	// Default: false
	TrimSpace bool

	// Comment, when non-zero, marks lines that are ignored entirely if it
	// is the first character of the line.
	Comment rune

	// LazyQuotes keeps a quote appearing inside an unquoted field as a
	// literal character instead of failing with ErrBareQuote.
	LazyQuotes bool
}

// DefaultDialect returns the RFC 4180 comma dialect with a header row:
// empty lines are skipped and whitespace is kept as is.
func DefaultDialect() Dialect {
	return Dialect{
		Comma:          ',',
		Quote:          '"',
		HeaderPresent:  true,
		SkipEmptyLines: true,
	}
}

// ErrInvalidDialect is wrapped by every error returned from Dialect.Validate.
var ErrInvalidDialect = errors.New("csvparser: invalid dialect")

// Validate checks that the dialect can be used to tokenize input.
func (d Dialect) Validate() error {
	if !validDelim(d.Comma) {
		return fmt.Errorf("%w: delimiter %q", ErrInvalidDialect, d.Comma)
	}
	if !validDelim(d.Quote) {
		return fmt.Errorf("%w: quote %q", ErrInvalidDialect, d.Quote)
	}
	if d.Comma == d.Quote {
		return fmt.Errorf("%w: delimiter and quote are both %q", ErrInvalidDialect, d.Comma)
	}
	if d.Comment != 0 {
		if !validDelim(d.Comment) || d.Comment == d.Comma || d.Comment == d.Quote {
			return fmt.Errorf("%w: comment %q", ErrInvalidDialect, d.Comment)
		}
	}
	return nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
