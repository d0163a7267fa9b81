// Package tokenizer selects and implements sentence splitters used for
// sentence-mode buffer trimming.
//
// Select picks one of three strategies from static language tables:
// a Ukrainian rule splitter, a Moses-style rule splitter, or the learned
// splitter sidecar (with or without a language hint). Segment-mode trimming
// needs no splitter and gets nil.
package tokenizer
