// Package database provides the SQLite history store for petrd.
//
// Every file processed by an extraction run is recorded with its run ID,
// classification, integrity verdict, output paths and payload digest, so
// operators can later answer "when was this scan unpacked and did it
// validate?" without keeping logs around. The store lives in a single
// petrd.db file, by default under the XDG data directory.
package database
