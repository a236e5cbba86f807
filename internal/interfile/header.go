package interfile

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/model"
)

// Well-known keys.
const (
	// KeyDataFile names the file holding the raw data.
	KeyDataFile = "name of data file"
	// KeyListModeWords is the number of 32-bit words in a list mode payload.
	KeyListModeWords = "%total listmode word counts"
	// PrefixDataSet starts the first data set record of a normalization header.
	PrefixDataSet = "%data set [1]:={0,,"
	// assign separates a key from its value.
	assign = ":="
)

var digits = regexp.MustCompile(`[0-9]+`)

// Header is an Interfile header held in memory.
type Header struct {
	text string
}

// New wraps text as a header.
func New(text string) *Header {
	return &Header{text: text}
}

// ReadFile loads a header from path.
func ReadFile(path string) (*Header, error) {
	data, err := os.ReadFile(path) //nolint:gosec // header written by this tool
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	return New(string(data)), nil
}

// String returns the header text.
func (h *Header) String() string {
	return h.text
}

// span returns the start and end of the record beginning at the first
// occurrence of key. The end is the first CR or LF after the start, or the
// end of the text.
func (h *Header) span(key string) (int, int, error) {
	start := strings.Index(h.text, key)
	if start < 0 {
		return 0, 0, fmt.Errorf("%w: header key %q", model.ErrMissingField, key)
	}
	end := strings.IndexAny(h.text[start:], "\r\n")
	if end < 0 {
		return start, len(h.text), nil
	}
	return start, start + end, nil
}

// Lookup returns the record starting at key, without its line terminator.
func (h *Header) Lookup(key string) (string, error) {
	start, end, err := h.span(key)
	if err != nil {
		return "", err
	}
	return h.text[start:end], nil
}

// Set replaces the record starting at key with "key:=v".
func (h *Header) Set(key string, v Value) error {
	return h.SetRecord(key, key+assign+v.String())
}

// SetRecord replaces the record starting with prefix by record.
func (h *Header) SetRecord(prefix, record string) error {
	start, end, err := h.span(prefix)
	if err != nil {
		return err
	}
	h.text = h.text[:start] + record + h.text[end:]
	return nil
}

// Count returns the first run of decimal digits on the record holding label.
func (h *Header) Count(label string) (uint64, error) {
	rec, err := h.Lookup(label)
	if err != nil {
		return 0, err
	}
	d := digits.FindString(rec[len(label):])
	if d == "" {
		return 0, fmt.Errorf("%w: no number in header record %q", model.ErrMissingField, rec)
	}
	n, err := strconv.ParseUint(d, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", model.ErrDecode, label, err)
	}
	return n, nil
}

// Normalize rewrites the header's line endings with NormalizeLineEndings.
func (h *Header) Normalize() {
	h.text = NormalizeLineEndings(h.text)
}

// WriteNew writes the header verbatim to a new file at dst.
func (h *Header) WriteNew(ctx context.Context, dst string) error {
	if _, err := fsio.WriteNew(ctx, dst, strings.NewReader(h.text)); err != nil {
		return err
	}
	return nil
}

// WriteFile replaces the content of the existing file at path with the header.
func (h *Header) WriteFile(path string) error {
	return fsio.Replace(path, []byte(h.text))
}

// NormalizeLineEndings collapses runs of CR, terminates every line with CRLF
// and appends a final CRLF when the text does not end with one. Applying it
// twice gives the same result as applying it once.
func NormalizeLineEndings(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/32 + 2)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\r':
			for i+1 < len(s) && s[i+1] == '\r' {
				i++
			}
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteString("\r\n")
		case '\n':
			b.WriteString("\r\n")
		default:
			b.WriteByte(c)
		}
	}
	out := b.String()
	if !strings.HasSuffix(out, "\r\n") {
		out += "\r\n"
	}
	return out
}
