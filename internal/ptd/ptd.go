// Package ptd validates Siemens .ptd files, which store raw list mode data
// followed by a DICOM dataset carrying the Interfile header.
//
// The dataset is found by scanning backwards from the end of the file for
// the "DICM" magic. Everything before its 128-byte preamble is list mode
// data and must hold exactly the number of words the header announces.
package ptd

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/interfile"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/payload"
)

const (
	// SearchWindow is how far from the end of the file the DICOM magic is searched.
	SearchWindow = 50000
	// preambleLength is the DICOM preamble preceding the magic.
	preambleLength = 128
)

var (
	dicomMagic     = []byte("DICM")
	interfileStart = []byte("!INTERFILE")
	interfileLast  = []byte("%comment")
)

// Validate checks the .ptd file at path. The returned verdict's Source is the
// embedded list mode block at the start of the file.
func Validate(path string, logger *slog.Logger) model.Verdict {
	if logger == nil {
		logger = slog.Default()
	}

	tail, offset, err := fsio.Tail(path, SearchWindow)
	if err != nil {
		return failed(model.StatusIOError, -1, 0, err.Error())
	}

	idx := bytes.LastIndex(tail, dicomMagic)
	if idx < 0 {
		return failed(model.StatusSizeMismatch, -1, 0, "no DICOM header found")
	}
	magicPos := offset + int64(idx)
	logger.Debug("found DICOM header", slog.String("path", path), slog.Int64("offset", magicPos))

	header, err := interfileHeader(tail[idx:])
	if err != nil {
		return failed(model.StatusSizeMismatch, -1, 0, err.Error())
	}

	count, err := header.Count(interfile.KeyListModeWords)
	if err != nil {
		return failed(model.StatusSizeMismatch, -1, 0, err.Error())
	}
	exp, err := payload.ListMode(count)
	if err != nil {
		return failed(model.StatusSizeMismatch, -1, 0, err.Error())
	}

	actual := magicPos - preambleLength
	switch {
	case actual < 0:
		return failed(model.StatusSizeMismatch, exp.Bytes, actual,
			fmt.Sprintf("DICOM header at offset %d leaves no room for a preamble", magicPos))
	case actual%payload.ListModeWordWidth != 0:
		return failed(model.StatusSizeMismatch, exp.Bytes, actual,
			fmt.Sprintf("list mode block of %d bytes is not a whole number of words", actual))
	case actual != exp.Bytes:
		return failed(model.StatusSizeMismatch, exp.Bytes, actual,
			fmt.Sprintf("expected %d list mode words, found %d", count, actual/payload.ListModeWordWidth))
	}

	return model.Verdict{
		Status:   model.StatusGood,
		Source:   model.Source{Kind: model.SourceEmbedded, Path: path, Length: actual},
		Expected: exp.Bytes,
		Actual:   actual,
	}
}

// interfileHeader cuts the header from "!INTERFILE" to the end of the
// "%comment" line out of the dataset bytes.
func interfileHeader(ds []byte) (*interfile.Header, error) {
	start := bytes.Index(ds, interfileStart)
	if start < 0 {
		return nil, fmt.Errorf("%w: no Interfile header found", model.ErrMissingField)
	}
	last := bytes.Index(ds[start:], interfileLast)
	if last < 0 {
		return nil, fmt.Errorf("%w: no end of Interfile header found", model.ErrMissingField)
	}
	last += start
	end := bytes.IndexByte(ds[last:], '\n')
	if end < 0 {
		end = len(ds)
	} else {
		end += last
	}
	return interfile.New(string(ds[start:end])), nil
}

func failed(status model.Status, expected, actual int64, reason string) model.Verdict {
	return model.Verdict{Status: status, Expected: expected, Actual: actual, Reason: reason}
}
