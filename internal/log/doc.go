// Package log provides the petrd logger: a standard slog text handler wrapped
// by a handler that keeps patient identifiers out of log output.
//
// DICOM files and the Interfile headers embedded in them carry patient names,
// IDs and birth dates. Extraction logs are routinely attached to support
// tickets, so the RedactHandler masks:
//   - attributes whose key names a patient identifier (patient_name,
//     patient_id, birth_date, accession_number and similar)
//   - Interfile records such as "patient name:=DOE^JOHN" found inside string
//     values, keeping the key and masking only the value
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("header located", "header", text) // patient records masked
//	slog.SetDefault(logger)
package log
