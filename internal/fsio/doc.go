// Package fsio holds the file system primitives used when unpacking raw data:
// size checks, sidecar naming and no-clobber writes.
//
// Outputs are first written to a temporary file in the destination directory
// and then published under their final name in a single step that fails if
// the name is taken. A failed or cancelled write therefore never leaves a
// truncated destination behind, and an existing file is never replaced.
package fsio
