package dicomfile

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/petrd/internal/model"
)

// multiValueSeparator joins multi-valued strings, as in "ORIGINAL\PRIMARY".
const multiValueSeparator = `\`

// decodeText converts an element value to text. Supported value types are
// string, []string, []byte, []int and []float64; anything else is a decode
// error. The empty string means the element carries nothing usable.
func decodeText(v any) (string, error) {
	s, err := textual(v)
	if err != nil {
		return "", err
	}
	if s != "" {
		return s, nil
	}
	return numeric(v), nil
}

func textual(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return trimPadding(x), nil
	case []string:
		return trimPadding(strings.Join(x, multiValueSeparator)), nil
	case []byte:
		s := strings.TrimRight(string(x), "\x00")
		if !printable(s) {
			return "", nil
		}
		return trimPadding(s), nil
	case []int, []float64:
		return "", nil
	default:
		return "", fmt.Errorf("%w: unsupported value type %T", model.ErrDecode, v)
	}
}

func numeric(v any) string {
	switch x := v.(type) {
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, multiValueSeparator)
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strings.Join(parts, multiValueSeparator)
	case []byte:
		switch len(x) {
		case 2:
			return strconv.Itoa(int(int16(binary.LittleEndian.Uint16(x))))
		case 4:
			return strconv.Itoa(int(int32(binary.LittleEndian.Uint32(x))))
		}
	}
	return ""
}

// decodeBytes returns the raw form of a value. Strings are returned as their
// bytes so that headers stored with a text VR are still reachable.
func decodeBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case []string:
		return []byte(strings.Join(x, multiValueSeparator)), nil
	default:
		return nil, fmt.Errorf("%w: value of type %T has no byte form", model.ErrDecode, v)
	}
}

// trimPadding removes the NUL and space padding DICOM appends to even-length values.
func trimPadding(s string) string {
	return strings.TrimRight(s, "\x00 ")
}

// printable reports whether s looks like text: valid UTF-8 without control
// characters other than tab, CR and LF.
func printable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
		if r == 0x7f {
			return false
		}
	}
	return true
}
