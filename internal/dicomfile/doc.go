// Package dicomfile gives read access to individual elements of a DICOM file.
//
// Only the handful of elements needed to classify and unpack raw scanner files
// are ever read, so the package exposes a small Container interface instead of
// the full dataset. Open parses a file with github.com/suyashkumar/dicom; the
// Memory container serves tests and callers that already hold decoded values.
//
// Element values are decoded as text first. When the textual form is empty a
// numeric form is tried, so that integer-valued private tags compare the same
// way regardless of the value representation the scanner wrote.
package dicomfile
