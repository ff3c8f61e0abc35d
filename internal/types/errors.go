// Package types provides the core data structures shared across
// chapterforge's parsing, authoring, and read-back packages.
package types

import "fmt"

// Kind identifies a taxonomy entry from the error handling design: every
// fallible step returns an error whose Kind() can be inspected by the
// mux/read orchestrators to build a Status without type-switching on
// every concrete error struct.
type Kind string

const (
	// KindInputUnreadable means the source audio/chapters/JPEG/cover could
	// not be opened or read.
	KindInputUnreadable Kind = "input_unreadable"
	// KindInputInvalid means the input was read but is structurally wrong
	// (empty AAC frames, malformed JSON, non-JPEG, non-4:2:0 JPEG, zero
	// audio samples).
	KindInputInvalid Kind = "input_invalid"
	// KindParseFallback means structured parsing failed but the flat scan
	// recovered enough to proceed; this is a warning, not a failure.
	KindParseFallback Kind = "parse_fallback"
	// KindOversize means an mdat box would exceed the 32-bit size field.
	KindOversize Kind = "oversize"
	// KindOutputUnwritable means the destination could not be opened or
	// written.
	KindOutputUnwritable Kind = "output_unwritable"
	// KindReadIncomplete means the parser produced no usable audio sample
	// table.
	KindReadIncomplete Kind = "read_incomplete"
)

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// Kind implements Kinded.
func (e *OutOfBoundsError) Kind() Kind { return KindInputInvalid }

// CorruptedAtomError is returned when the box tree of a source/foreign
// file is structurally invalid beyond what clamping can repair.
type CorruptedAtomError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedAtomError) Error() string {
	return fmt.Sprintf("%s: corrupted atom at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Kind implements Kinded.
func (e *CorruptedAtomError) Kind() Kind { return KindInputInvalid }

// ParseFallbackError is surfaced as a Warning, never as a fatal Status;
// it records that the flat-scan recovery path was used.
type ParseFallbackError struct {
	Path   string
	Reason string
}

func (e *ParseFallbackError) Error() string {
	return fmt.Sprintf("%s: structured parse failed, used flat-scan fallback: %s", e.Path, e.Reason)
}

// Kind implements Kinded.
func (e *ParseFallbackError) Kind() Kind { return KindParseFallback }

// OversizeError is returned when an mdat payload would not fit in a
// 32-bit box size field.
type OversizeError struct {
	Box  string
	Size uint64
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("%s too large: %d bytes exceeds 32-bit box size limit", e.Box, e.Size)
}

// Kind implements Kinded.
func (e *OversizeError) Kind() Kind { return KindOversize }

// InputError wraps a failure to read source audio, chapter JSON, a JPEG,
// or a cover image.
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// Kind implements Kinded.
func (e *InputError) Kind() Kind { return KindInputUnreadable }

// InvalidInputError wraps a structurally invalid but readable input:
// empty AAC stream, malformed JSON, unparseable or non-4:2:0 JPEG, or
// zero audio samples.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// Kind implements Kinded.
func (e *InvalidInputError) Kind() Kind { return KindInputInvalid }

// OutputError wraps a failure to open or write the destination file.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Kind implements Kinded.
func (e *OutputError) Kind() Kind { return KindOutputUnwritable }

// ReadIncompleteError is returned by the read-back path when the parser
// produced no audio sample table.
type ReadIncompleteError struct {
	Path   string
	Reason string
}

func (e *ReadIncompleteError) Error() string {
	return fmt.Sprintf("%s: read incomplete: %s", e.Path, e.Reason)
}

// Kind implements Kinded.
func (e *ReadIncompleteError) Kind() Kind { return KindReadIncomplete }

// Kinded is implemented by every error type in this taxonomy so the
// orchestrator can classify a failure without a type switch over every
// concrete struct.
type Kinded interface {
	error
	Kind() Kind
}

// Warning represents a non-fatal issue encountered during parsing or
// authoring: a non-zero first chapter start, a dimension mismatch in a
// later chapter image, a parse-fallback recovery, or missing optional
// metadata.
type Warning struct {
	// Stage where the warning occurred: "parse", "timing", "image", "mux".
	Stage string

	// Message is the human-readable detail.
	Message string

	// Offset is the file offset where the issue occurred (0 if not
	// applicable).
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
