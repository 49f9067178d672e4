// Package speaker infers the presenter of a showcase talk from its video title.
//
// Titles come from many uploaders with no shared convention ("by X",
// "Winner - X", "X, 1st Place", "Topic | 3MT | X", "X (Institution)").
// Attribution runs an ordered chain of rules. Each rule pairs a pattern with
// rejection predicates evaluated against the captured text; the first rule
// whose candidate survives wins. When nothing survives the caller-supplied
// fallback (usually the channel or uploader name) is returned.
//
// The default chain is built once at init and never mutated, so Extract and
// Attribute are safe for concurrent use.
package speaker
