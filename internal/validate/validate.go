// Package validate checks embedded and sidecar payloads against the length a
// file kind requires, without writing anything.
package validate

import (
	"errors"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/payload"
)

// Check resolves the payload of t in c against exp and returns the verdict.
// It applies the same selection rules as extraction.
func Check(c dicomfile.Container, t dicomfile.Tag, exp payload.Expectation, sidecar string) model.Verdict {
	return FromResolution(payload.Resolve(c, t, exp, sidecar))
}

// CheckPresence is the rule for kinds without a length expectation: the
// payload is good when the element is non-empty or the sidecar exists.
func CheckPresence(c dicomfile.Container, t dicomfile.Tag, sidecar string) model.Verdict {
	return Check(c, t, payload.None(), sidecar)
}

// FromResolution converts a resolution and its error into a verdict.
func FromResolution(res payload.Resolution, err error) model.Verdict {
	v := model.Verdict{
		Source:   res.Source,
		Expected: res.Expectation.Bytes,
		Actual:   res.EmbeddedLength,
	}
	if res.SidecarLength >= 0 {
		v.Actual = res.SidecarLength
	}
	switch {
	case err == nil:
		v.Status = model.StatusGood
		v.Actual = res.Source.Length
	case errors.Is(err, model.ErrSizeMismatch):
		v.Status = model.StatusSizeMismatch
		v.Reason = err.Error()
	default:
		v.Status = model.StatusIOError
		v.Reason = err.Error()
	}
	return v
}
