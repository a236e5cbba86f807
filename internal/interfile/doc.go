// Package interfile reads and edits Interfile text headers.
//
// Headers are treated as opaque text: a record is found by searching for its
// key and ends at the first CR or LF after it. Edits replace one record in a
// single operation and leave every other byte untouched, so a header written
// back out differs from the scanner's only where it was changed.
package interfile
