// Package classify decides which raw data kind a DICOM container holds from
// its manufacturer, model and vendor-specific type tags.
package classify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
)

const (
	siemensManufacturer = "SIEMENS"
	siemensModel        = "Biograph_mMR"
	geManufacturer      = "GE MEDICAL SYSTEMS"
)

// Siemens image type markers, matched as substrings of (0008,0008).
var siemensImageTypes = []struct {
	marker string
	kind   model.FileKind
}{
	{`ORIGINAL\PRIMARY\PET_LISTMODE`, model.KindSiemensListMode},
	{`ORIGINAL\PRIMARY\PET_EM_SINO`, model.KindSiemensSinogram},
	{`ORIGINAL\PRIMARY\PET_NORM`, model.KindSiemensNorm},
}

// GE raw data types in (0021,1001).
const (
	geRawSinogram    = "3"
	geRawNorm        = "4"
	geRawGeometry    = "5"
	geRawWellCounter = "7"
)

// Classifier maps containers to file kinds.
type Classifier struct {
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger for classification decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the kind of c.
//
// KindError is returned with an error wrapping model.ErrMissingField when
// the manufacturer or a tag required by the vendor rules is absent, or with
// the read error when a tag cannot be decoded. An unrecognized manufacturer
// or type value yields KindUnknown and no error.
func (cl *Classifier) Classify(c dicomfile.Container) (model.FileKind, error) {
	manufacturer, err := require(c, dicomfile.TagManufacturer, "manufacturer")
	if err != nil {
		return model.KindError, err
	}

	var kind model.FileKind
	switch {
	case strings.Contains(manufacturer, siemensManufacturer):
		kind, err = classifySiemens(c)
	case strings.Contains(manufacturer, geManufacturer):
		kind, err = classifyGE(c)
	default:
		kind = model.KindUnknown
	}

	cl.logger.Debug("classified file",
		slog.String("path", c.Path()),
		slog.String("manufacturer", manufacturer),
		slog.String("kind", kind.String()))
	return kind, err
}

// Classify classifies c with a default Classifier.
func Classify(c dicomfile.Container) (model.FileKind, error) {
	return New().Classify(c)
}

func classifySiemens(c dicomfile.Container) (model.FileKind, error) {
	modelName, err := require(c, dicomfile.TagModelName, "model name")
	if err != nil {
		return model.KindError, err
	}
	imageType, err := require(c, dicomfile.TagImageType, "image type")
	if err != nil {
		return model.KindError, err
	}
	if !strings.Contains(modelName, siemensModel) {
		return model.KindUnknown, nil
	}
	for _, it := range siemensImageTypes {
		if strings.Contains(imageType, it.marker) {
			return it.kind, nil
		}
	}
	return model.KindUnknown, nil
}

func classifyGE(c dicomfile.Container) (model.FileKind, error) {
	rawType, err := require(c, dicomfile.TagGERawDataType, "raw data type")
	if err != nil {
		return model.KindError, err
	}

	switch strings.TrimSpace(rawType) {
	case geRawSinogram:
		sub, err := require(c, dicomfile.TagGESinogramType, "sinogram type")
		if err != nil {
			return model.KindError, err
		}
		switch strings.TrimSpace(sub) {
		case "0":
			return model.KindGESinogram, nil
		case "5":
			return model.KindGECTAC, nil
		}
	case geRawNorm:
		sub, err := require(c, dicomfile.TagGECalibrationType, "calibration type")
		if err != nil {
			return model.KindError, err
		}
		switch strings.TrimSpace(sub) {
		case "0":
			return model.KindGENorm2D, nil
		case "2":
			return model.KindGENorm3D, nil
		}
	case geRawGeometry:
		sub, err := require(c, dicomfile.TagGECalibrationType, "calibration type")
		if err != nil {
			return model.KindError, err
		}
		if strings.TrimSpace(sub) == "3" {
			return model.KindGEGeometry, nil
		}
	case geRawWellCounter:
		// Well counter calibration files are recognized but not unpacked.
	}
	return model.KindUnknown, nil
}

// require reads a tag that must be present.
func require(c dicomfile.Container, t dicomfile.Tag, name string) (string, error) {
	v, ok, err := c.Text(t)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s: %w", name, t, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s %s in %s", model.ErrMissingField, name, t, c.Path())
	}
	return v, nil
}
