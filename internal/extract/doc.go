// Package extract unpacks raw scanner data from DICOM containers.
//
// New maps a classified FileKind to an Extractor. Siemens mMR kinds carry an
// Interfile header next to their payload: the header is written beside the
// payload and then rewritten to reference it. GE kinds carry a single RDF
// blob and have no header.
//
// Extractors never overwrite existing files. Each output is written to a
// temporary file and published under its final name only once complete.
package extract
