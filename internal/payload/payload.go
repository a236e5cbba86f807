package payload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/model"
)

const (
	// ListModeWordWidth is the size in bytes of one list mode event word.
	ListModeWordWidth = 4
	// NormByteLength is the fixed size of a Siemens mMR normalization payload.
	NormByteLength = 323404
)

// Expectation is the payload length a file kind requires.
type Expectation struct {
	// Count is the number of words, or 0 for fixed lengths.
	Count uint64
	// Width is the size of a word in bytes, or 0 for fixed lengths.
	Width int64
	// Bytes is the required length, or -1 when any length is accepted.
	Bytes int64
}

// None accepts any payload length.
func None() Expectation {
	return Expectation{Bytes: -1}
}

// Fixed requires exactly n bytes.
func Fixed(n int64) Expectation {
	return Expectation{Bytes: n}
}

// ListMode requires count words of ListModeWordWidth bytes each.
func ListMode(count uint64) (Expectation, error) {
	if count > math.MaxInt64/ListModeWordWidth {
		return Expectation{}, fmt.Errorf("%w: word count %d overflows the payload length", model.ErrDecode, count)
	}
	return Expectation{
		Count: count,
		Width: ListModeWordWidth,
		Bytes: int64(count) * ListModeWordWidth, //nolint:gosec // bounded above
	}, nil
}

// Known reports whether the expectation fixes a length.
func (e Expectation) Known() bool {
	return e.Bytes >= 0
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Source is the selected candidate; Kind is SourceNone on failure.
	Source model.Source
	// Expectation is the expectation the candidates were compared against.
	Expectation Expectation
	// EmbeddedLength is the length of the embedded element, 0 when absent.
	EmbeddedLength int64
	// SidecarPath is the sidecar considered, empty when sidecars are disabled.
	SidecarPath string
	// SidecarLength is the sidecar length, or -1 when it does not exist.
	SidecarLength int64

	embedded []byte
}

// Resolve selects the payload candidate for t in c.
//
// With a known expectation the embedded element is used when its length
// matches; otherwise the sidecar is used when its length matches. With no
// expectation a non-empty embedded element wins over an existing sidecar.
// An empty sidecar argument disables the sidecar fallback.
func Resolve(c dicomfile.Container, t dicomfile.Tag, exp Expectation, sidecar string) (Resolution, error) {
	res := Resolution{Expectation: exp, SidecarPath: sidecar, SidecarLength: -1}

	embedded, _, err := c.Bytes(t)
	if err != nil {
		return res, err
	}
	res.embedded = embedded
	res.EmbeddedLength = int64(len(embedded))

	if exp.Known() && res.EmbeddedLength == exp.Bytes {
		res.Source = model.Source{Kind: model.SourceEmbedded, Length: res.EmbeddedLength}
		return res, nil
	}
	if !exp.Known() && res.EmbeddedLength > 0 {
		res.Source = model.Source{Kind: model.SourceEmbedded, Length: res.EmbeddedLength}
		return res, nil
	}

	if sidecar == "" {
		if exp.Known() {
			return res, fmt.Errorf("%w: element %s holds %d bytes, expected %d",
				model.ErrSizeMismatch, t, res.EmbeddedLength, exp.Bytes)
		}
		return res, fmt.Errorf("%w: element %s in %s is empty", model.ErrIO, t, c.Path())
	}

	size, err := fsio.Size(sidecar)
	if err != nil {
		if exists, _ := fsio.Exists(sidecar); !exists {
			return res, fmt.Errorf("%w: element %s holds %d bytes and sidecar %s does not exist",
				model.ErrIO, t, res.EmbeddedLength, sidecar)
		}
		return res, err
	}
	res.SidecarLength = size

	if exp.Known() && size != exp.Bytes {
		return res, fmt.Errorf("%w: expected %d bytes, element %s holds %d and sidecar %s holds %d",
			model.ErrSizeMismatch, exp.Bytes, t, res.EmbeddedLength, sidecar, size)
	}
	res.Source = model.Source{Kind: model.SourceSidecar, Path: sidecar, Length: size}
	return res, nil
}

// Write copies the selected candidate to a new file at dst. When tee is not
// nil every byte written is also written to tee.
func Write(ctx context.Context, res Resolution, dst string, tee io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	opts := []fsio.WriteOption{fsio.WithExpectedSize(res.Source.Length)}
	if tee != nil {
		opts = append(opts, fsio.WithTee(tee))
	}

	switch res.Source.Kind {
	case model.SourceEmbedded:
		return fsio.WriteNew(ctx, dst, bytes.NewReader(res.embedded), opts...)
	case model.SourceSidecar:
		return fsio.CopyNew(ctx, res.Source.Path, dst, opts...)
	default:
		return 0, fmt.Errorf("%w: no payload source selected for %s", model.ErrIO, dst)
	}
}
