package csvparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// TEXT DECODING
// =============================================================================
//
// Input is converted to UTF-8 before tokenizing so that delimiters and quotes
// can be any character, independent of the source encoding. Encodings are
// named with WHATWG labels ("shift_jis", "windows-1252", "utf-16le", ...).
//
// For UTF-8 input the bytes are validated rather than transformed, which is
// what allows a malformed sequence to be reported with its exact offset.
// Legacy decoders from golang.org/x/text substitute U+FFFD for undecodable
// bytes and so only fail on structural errors.
//
// =============================================================================

// DefaultEncoding is used when no encoding label is given.
const DefaultEncoding = "UTF-8"

const decodeBufferSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errInconsistentByteCount = errors.New("csvparser: inconsistent byte count returned by decoder")

// ResolveEncoding maps an encoding label to its decoder and canonical name.
// The empty label means UTF-8.
func ResolveEncoding(label string) (encoding.Encoding, string, error) {
	if isUTF8Label(label) {
		return unicode.UTF8, DefaultEncoding, nil
	}
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	return enc, name, nil
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// NewDecodingReader returns a reader producing UTF-8 text from src, which is
// encoded as label. Decoding failures are returned as *MalformedInputError.
func NewDecodingReader(src io.Reader, label string) (io.Reader, error) {
	enc, name, err := ResolveEncoding(label)
	if err != nil {
		return nil, err
	}

	d := &decodeReader{
		src:      src,
		encoding: name,
		srcBuf:   make([]byte, decodeBufferSize),
		dstBuf:   make([]byte, decodeBufferSize),
	}
	if name == DefaultEncoding {
		d.t = encoding.UTF8Validator
		d.skipBOM = true
	} else {
		d.t = enc.NewDecoder()
	}
	return d, nil
}

// decodeReader follows the buffering scheme of transform.Reader but keeps
// track of how many source bytes the transformer has consumed.
type decodeReader struct {
	src      io.Reader
	t        transform.Transformer
	encoding string
	skipBOM  bool

	srcBuf     []byte
	src0, src1 int
	dstBuf     []byte
	dst0, dst1 int

	offset   int64 // source bytes consumed by t
	srcErr   error // sticky error from src
	err      error // terminal error returned once dst is drained
	complete bool
}

func (d *decodeReader) Read(p []byte) (int, error) {
	for {
		if d.dst0 != d.dst1 {
			n := copy(p, d.dstBuf[d.dst0:d.dst1])
			d.dst0 += n
			return n, nil
		}
		if d.complete {
			return 0, d.err
		}

		if d.skipBOM && (d.src1-d.src0 >= len(utf8BOM) || d.srcErr != nil) {
			if bytes.HasPrefix(d.srcBuf[d.src0:d.src1], utf8BOM) {
				d.src0 += len(utf8BOM)
				d.offset += int64(len(utf8BOM))
			}
			d.skipBOM = false
		}

		if !d.skipBOM && (d.src0 != d.src1 || d.srcErr != nil) {
			atEOF := d.srcErr == io.EOF
			nDst, nSrc, err := d.t.Transform(d.dstBuf, d.srcBuf[d.src0:d.src1], atEOF)
			d.dst0, d.dst1 = 0, nDst
			d.src0 += nSrc
			d.offset += int64(nSrc)

			switch {
			case err == nil:
				if d.src0 != d.src1 {
					d.finish(errInconsistentByteCount)
					continue
				}
				if d.srcErr != nil {
					d.finish(d.srcErr)
				}
				continue
			case err == transform.ErrShortDst && (nDst != 0 || nSrc != 0):
				continue
			case err == transform.ErrShortSrc && d.srcErr == nil && d.src1-d.src0 != len(d.srcBuf):
				// Need more input; fall through to the read below.
			default:
				if d.srcErr != nil && d.srcErr != io.EOF {
					d.finish(d.srcErr)
				} else {
					d.finish(&MalformedInputError{Offset: d.offset, Encoding: d.encoding, Err: err})
				}
				continue
			}
		}

		if d.src0 != 0 {
			d.src0, d.src1 = 0, copy(d.srcBuf, d.srcBuf[d.src0:d.src1])
		}
		n, err := d.src.Read(d.srcBuf[d.src1:])
		d.src1 += n
		if err != nil {
			d.srcErr = err
		}
	}
}

func (d *decodeReader) finish(err error) {
	d.complete = true
	d.err = err
}
