package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/payload"
	"github.com/nao1215/petrd/internal/validate"
)

var geExtensions = map[model.FileKind]string{
	model.KindGESinogram: ".sino.rdf",
	model.KindGECTAC:     ".ctac.rdf",
	model.KindGENorm2D:   ".norm.rdf",
	model.KindGENorm3D:   ".norm.rdf",
	model.KindGEGeometry: ".geo.rdf",
}

// geRDF unpacks the RDF blob of a GE PET file. The blob is always embedded.
type geRDF struct {
	kind      model.FileKind
	container dicomfile.Container
	opts      options
}

func newGE(kind model.FileKind, c dicomfile.Container, o options) *geRDF {
	return &geRDF{kind: kind, container: c, opts: o}
}

func (g *geRDF) Kind() model.FileKind { return g.kind }

func (g *geRDF) PayloadName(stem string) string {
	return stem + geExtensions[g.kind]
}

func (g *geRDF) HeaderName(string) string { return "" }

func (g *geRDF) Validate() model.Verdict {
	return validate.CheckPresence(g.container, dicomfile.TagGEPayload, "")
}

func (g *geRDF) ExtractPayload(ctx context.Context, dst string) (model.Verdict, int64, error) {
	// A taken destination says nothing about the payload, so the verdict
	// stays unchecked.
	if exists, err := fsio.Exists(dst); err != nil {
		return model.Verdict{}, 0, err
	} else if exists {
		return model.Verdict{}, 0, fmt.Errorf("%s: %w", dst, model.ErrAlreadyExists)
	}

	res, err := payload.Resolve(g.container, dicomfile.TagGEPayload, payload.None(), "")
	verdict := validate.FromResolution(res, err)
	if err != nil {
		return verdict, 0, err
	}

	g.opts.logger.Debug("writing RDF blob",
		slog.String("kind", g.kind.String()),
		slog.Int64("bytes", res.Source.Length),
		slog.String("dst", dst))

	n, err := payload.Write(ctx, res, dst, g.opts.digest)
	return verdict, n, err
}

func (g *geRDF) ExtractHeader(context.Context, string) error { return nil }

func (g *geRDF) RewriteHeader(string, string) error { return nil }
