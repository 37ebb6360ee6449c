package csvparser

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// Reader splits UTF-8 text into records according to a Dialect.
// It reads one record per call and never looks further ahead than one
// character, so memory use is bounded by the largest record.
type Reader struct {
	d  Dialect
	br *bufio.Reader

	line       int // 1-based line of the last character read
	col        int // 1-based column of the last character read
	recordLine int

	buf []byte
	err error
}

// NewReader returns a Reader tokenizing r under d. The dialect is used as
// given; call Dialect.Validate beforehand.
func NewReader(r io.Reader, d Dialect) *Reader {
	return &Reader{
		d:    d,
		br:   bufio.NewReader(r),
		line: 1,
		buf:  make([]byte, 0, 256),
	}
}

// RecordLine returns the line on which the most recently read record began.
func (r *Reader) RecordLine() int {
	return r.recordLine
}

// Read returns the next record. It returns io.EOF when the input is
// exhausted. Errors are sticky: once Read fails, it keeps failing.
func (r *Reader) Read() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	record, err := r.readRecord()
	if err != nil {
		r.err = err
		return nil, err
	}
	return record, nil
}

// ReadAll reads the remaining records.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (r *Reader) readRecord() ([]string, error) {
	// Skip empty and comment lines before the record starts.
	for {
		c, err := r.next()
		if err != nil {
			return nil, err
		}
		if c == '\n' || c == '\r' {
			startLine := r.line
			r.endLine(c)
			if r.d.SkipEmptyLines {
				continue
			}
			r.recordLine = startLine
			return []string{""}, nil
		}
		if r.d.Comment != 0 && c == r.d.Comment {
			if err := r.skipLine(); err != nil {
				return nil, err
			}
			continue
		}
		r.back()
		break
	}

	r.recordLine = r.line
	var record []string
	for {
		field, last, err := r.readField()
		if err != nil {
			return nil, err
		}
		record = append(record, field)
		if last {
			return record, nil
		}
	}
}

// readField reads one field and reports whether it was the last of its record.
func (r *Reader) readField() (string, bool, error) {
	r.buf = r.buf[:0]

	c, err := r.next()
	if r.d.TrimSpace {
		for err == nil && r.isBlank(c) {
			c, err = r.next()
		}
	}
	if err == io.EOF {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	if c == r.d.Quote {
		return r.readQuoted()
	}

	for {
		switch {
		case c == r.d.Comma:
			return r.unquoted(), false, nil
		case c == '\n' || c == '\r':
			r.endLine(c)
			return r.unquoted(), true, nil
		case c == r.d.Quote && !r.d.LazyQuotes:
			return "", false, r.parseError(r.col, ErrBareQuote)
		default:
			r.buf = utf8.AppendRune(r.buf, c)
		}

		c, err = r.next()
		if err == io.EOF {
			return r.unquoted(), true, nil
		}
		if err != nil {
			return "", false, err
		}
	}
}

func (r *Reader) readQuoted() (string, bool, error) {
	for {
		c, err := r.next()
		if err == io.EOF {
			return "", false, r.parseError(r.col+1, ErrUnterminatedQuote)
		}
		if err != nil {
			return "", false, err
		}

		switch c {
		case r.d.Quote:
			n, err := r.next()
			if err == nil && n == r.d.Quote {
				r.buf = utf8.AppendRune(r.buf, c)
				continue
			}
			if r.d.TrimSpace {
				for err == nil && r.isBlank(n) {
					n, err = r.next()
				}
			}
			switch {
			case err == io.EOF:
				return string(r.buf), true, nil
			case err != nil:
				return "", false, err
			case n == r.d.Comma:
				return string(r.buf), false, nil
			case n == '\n' || n == '\r':
				r.endLine(n)
				return string(r.buf), true, nil
			default:
				return "", false, r.parseError(r.col, ErrQuoteTrail)
			}
		case '\r':
			r.buf = append(r.buf, '\r')
			if n, err := r.next(); err == nil {
				if n == '\n' {
					r.buf = append(r.buf, '\n')
				} else {
					r.back()
				}
			}
			r.newLine()
		case '\n':
			r.buf = append(r.buf, '\n')
			r.newLine()
		default:
			r.buf = utf8.AppendRune(r.buf, c)
		}
	}
}

func (r *Reader) unquoted() string {
	if r.d.TrimSpace {
		return strings.TrimRight(string(r.buf), " \t")
	}
	return string(r.buf)
}

func (r *Reader) skipLine() error {
	for {
		c, err := r.next()
		if err != nil {
			return err
		}
		if c == '\n' || c == '\r' {
			r.endLine(c)
			return nil
		}
	}
}

func (r *Reader) next() (rune, error) {
	c, _, err := r.br.ReadRune()
	if err != nil {
		return 0, err
	}
	r.col++
	return c, nil
}

// back unreads the character returned by the last call to next.
func (r *Reader) back() {
	_ = r.br.UnreadRune()
	r.col--
}

// endLine consumes the rest of a CR, LF or CRLF line break.
func (r *Reader) endLine(c rune) {
	if c == '\r' {
		if n, err := r.next(); err == nil && n != '\n' {
			r.back()
		}
	}
	r.newLine()
}

func (r *Reader) newLine() {
	r.line++
	r.col = 0
}

func (r *Reader) isBlank(c rune) bool {
	return (c == ' ' || c == '\t') && c != r.d.Comma
}

func (r *Reader) parseError(col int, err error) error {
	return &ParseError{StartLine: r.recordLine, Line: r.line, Column: col, Err: err}
}
