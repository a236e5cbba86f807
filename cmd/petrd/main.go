// Package main provides the entry point for the petrd CLI.
//
// petrd unpacks and validates raw PET data (list mode, sinograms,
// normalization and calibration files) that Siemens mMR and GE PET scanners
// embed in DICOM files.
//
// Usage:
//
//	petrd extract <file.dcm>...
//	petrd validate <file.dcm|file.ptd>...
//	petrd history [source]
//
// See --help for all available options.
package main

// main is the entry point for petrd.
func main() {
	Execute()
}
