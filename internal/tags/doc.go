// Package tags provides the primitive unit of the drawing interchange format:
// the (group code, value) tag.
//
// The value type of a tag is determined by its group code range (see Kind).
// Tags flow through the loader as a lazy, finite Stream; tokenizing, compiling
// and repair filters are composable stages over that Stream:
//
//	s := tags.Tokenize(r)                       // raw (code, string) pairs
//	s = tags.FilterInvalidPointCodes(s)         // optional repair stage
//	s = tags.Compile(s)                         // points, binaries, numbers
//
// A Stream is not restartable; re-read the source to iterate again.
//
// Writers are the inverse: TextWriter serializes tags to text lines,
// Collector keeps them in memory (used by tests and round-trip checks).
package tags
