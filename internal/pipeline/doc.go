// Package pipeline runs the per-file processing steps in sequence.
//
// A file goes through open, classify, payload, header and rewrite steps.
// Each step receives the State built by the steps before it and records its
// results in the file's model.Outcome. Execution stops at the first failing
// step, so a header is never written for a payload that failed and a header
// is never rewritten unless it was written.
//
// BatchProcessor runs independent pipelines for several files concurrently
// with errgroup, after rejecting inputs whose outputs would collide.
package pipeline
