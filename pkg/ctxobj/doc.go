// Package ctxobj implements the canonical context object model: a mutable
// tree of JSON-compatible values rooted at the "context" namespace,
// addressed by dot-paths and combined with a deterministic deep-merge law.
//
// The model is single-owner. The pipeline orchestrator owns an Object for
// the duration of one build and hands it to the transform executor during
// the transform stage; it is never accessed concurrently, so no locking is
// performed here.
package ctxobj
