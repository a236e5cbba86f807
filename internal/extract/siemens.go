package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/interfile"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/payload"
	"github.com/nao1215/petrd/internal/validate"
)

// headerExt is appended to the payload name to form the header name.
const headerExt = ".hdr"

// siemensProfile describes how one Siemens kind is unpacked.
type siemensProfile struct {
	ext string
	// expect derives the payload length from the header.
	expect func(h *interfile.Header) (payload.Expectation, error)
	// dataSetRecord also points the first data set record at the payload.
	dataSetRecord bool
	// normalize rewrites line endings to CRLF after the rewrite.
	normalize bool
}

var siemensProfiles = map[model.FileKind]siemensProfile{
	model.KindSiemensListMode: {
		ext: ".l",
		expect: func(h *interfile.Header) (payload.Expectation, error) {
			count, err := h.Count(interfile.KeyListModeWords)
			if err != nil {
				return payload.Expectation{}, err
			}
			return payload.ListMode(count)
		},
	},
	model.KindSiemensSinogram: {
		ext: ".s",
		expect: func(*interfile.Header) (payload.Expectation, error) {
			return payload.None(), nil
		},
	},
	model.KindSiemensNorm: {
		ext: ".n",
		expect: func(*interfile.Header) (payload.Expectation, error) {
			return payload.Fixed(payload.NormByteLength), nil
		},
		dataSetRecord: true,
		normalize:     true,
	},
}

type siemens struct {
	kind      model.FileKind
	profile   siemensProfile
	container dicomfile.Container
	opts      options
}

func newSiemens(kind model.FileKind, c dicomfile.Container, o options) *siemens {
	return &siemens{kind: kind, profile: siemensProfiles[kind], container: c, opts: o}
}

func (s *siemens) Kind() model.FileKind { return s.kind }

func (s *siemens) PayloadName(stem string) string {
	return stem + s.profile.ext
}

func (s *siemens) HeaderName(stem string) string {
	return s.PayloadName(stem) + headerExt
}

func (s *siemens) sidecar() string {
	return fsio.SidecarPath(s.container.Path())
}

func (s *siemens) resolve() (payload.Resolution, error) {
	h, err := interfile.Locate(s.container)
	if err != nil {
		return payload.Resolution{Expectation: payload.None(), SidecarLength: -1}, err
	}
	exp, err := s.profile.expect(h)
	if err != nil {
		return payload.Resolution{Expectation: payload.None(), SidecarLength: -1}, err
	}
	return payload.Resolve(s.container, dicomfile.TagSiemensPayload, exp, s.sidecar())
}

func (s *siemens) Validate() model.Verdict {
	return validate.FromResolution(s.resolve())
}

func (s *siemens) ExtractPayload(ctx context.Context, dst string) (model.Verdict, int64, error) {
	// A taken destination says nothing about the payload, so the verdict
	// stays unchecked.
	if exists, err := fsio.Exists(dst); err != nil {
		return model.Verdict{}, 0, err
	} else if exists {
		return model.Verdict{}, 0, fmt.Errorf("%s: %w", dst, model.ErrAlreadyExists)
	}

	res, err := s.resolve()
	verdict := validate.FromResolution(res, err)
	if err != nil {
		return verdict, 0, err
	}

	s.opts.logger.Debug("writing payload",
		slog.String("kind", s.kind.String()),
		slog.String("source", res.Source.Kind.String()),
		slog.Int64("bytes", res.Source.Length),
		slog.String("dst", dst))

	n, err := payload.Write(ctx, res, dst, s.opts.digest)
	return verdict, n, err
}

func (s *siemens) ExtractHeader(ctx context.Context, dst string) error {
	h, err := interfile.Locate(s.container)
	if err != nil {
		return err
	}
	return h.WriteNew(ctx, dst)
}

func (s *siemens) RewriteHeader(headerPath, payloadPath string) error {
	h, err := interfile.ReadFile(headerPath)
	if err != nil {
		return err
	}
	name := filepath.Base(payloadPath)
	if err := h.Set(interfile.KeyDataFile, interfile.Text(name)); err != nil {
		return err
	}
	if s.profile.dataSetRecord {
		if err := h.SetRecord(interfile.PrefixDataSet, interfile.PrefixDataSet+name+"}"); err != nil {
			return err
		}
	}
	if s.profile.normalize {
		h.Normalize()
	}
	return h.WriteFile(headerPath)
}
