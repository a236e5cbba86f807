package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
)

// Extractor unpacks one container of a known kind.
type Extractor interface {
	// Kind returns the file kind the extractor handles.
	Kind() model.FileKind

	// PayloadName returns the payload file name for the given stem.
	PayloadName(stem string) string

	// HeaderName returns the header file name for the given stem, or ""
	// when the kind has no separate header.
	HeaderName(stem string) string

	// Validate checks the payload without writing anything.
	Validate() model.Verdict

	// ExtractPayload writes the payload to dst and returns the verdict of
	// the payload check together with the number of bytes written.
	ExtractPayload(ctx context.Context, dst string) (model.Verdict, int64, error)

	// ExtractHeader writes the header verbatim to dst.
	ExtractHeader(ctx context.Context, dst string) error

	// RewriteHeader updates the header at headerPath to reference the
	// payload at payloadPath.
	RewriteHeader(headerPath, payloadPath string) error
}

type options struct {
	logger *slog.Logger
	digest io.Writer
}

// Option configures an Extractor.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDigest makes ExtractPayload write every payload byte to w as well.
func WithDigest(w io.Writer) Option {
	return func(o *options) {
		o.digest = w
	}
}

// New returns the extractor for kind. KindUnknown, KindError and values
// outside the closed set fail with model.ErrUnsupportedKind.
func New(kind model.FileKind, c dicomfile.Container, opts ...Option) (Extractor, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case model.KindSiemensListMode, model.KindSiemensSinogram, model.KindSiemensNorm:
		return newSiemens(kind, c, o), nil
	case model.KindGESinogram, model.KindGECTAC, model.KindGENorm2D, model.KindGENorm3D, model.KindGEGeometry:
		return newGE(kind, c, o), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedKind, kind)
	}
}
