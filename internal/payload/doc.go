// Package payload locates and writes the raw data of a scanner file.
//
// The data is either embedded in a DICOM element or stored in a sidecar file
// next to the container. Resolve decides which candidate to use from the
// expected length, and Write copies the chosen candidate to a new file.
package payload
