// Package mux orchestrates every other internal package into the
// single write_mp4 pipeline: it derives chapter timings, builds sample
// tables and tracks, composes moov, and writes the final container in
// either fast-start or trailing-moov layout.
//
// Grounded throughout on original_source/src/mp4_muxer.cpp's write_mp4,
// the reference pipeline this package reassembles from moovbuild,
// mdatio, stbl, aacsrc, timing, and jpeginfo.
package mux

import (
	"github.com/chapterforge/chapterforge/internal/aacsrc"
	"github.com/chapterforge/chapterforge/internal/moovbuild"
)

// TextChapterSample is one chapter entry on a text (tx3g) track: a
// start time, a display string, and an optional href (used by URL
// chapters; empty for plain titles).
type TextChapterSample struct {
	StartMS int64
	Text    string
	Href    string
}

// ImageChapterSample is one JPEG chapter image and its start time.
type ImageChapterSample struct {
	StartMS int64
	Data    []byte
}

// ExtraTextTrack is an additional text track beyond the title track,
// conventionally the URL track named "Chapter URLs".
type ExtraTextTrack struct {
	HandlerName string
	Samples     []TextChapterSample
}

// WriteInput bundles every input write_mp4 needs. Audio must have at
// least one frame; Titles may be empty (a file with no chapters is
// still a valid, if pointless, output).
type WriteInput struct {
	Audio *aacsrc.Result

	Titles          []TextChapterSample
	ExtraTextTracks []ExtraTextTrack
	Images          []ImageChapterSample

	Metadata moovbuild.MetadataSet

	// IlstPayload, when non-empty, is reused verbatim for meta/ilst
	// instead of re-encoding Metadata, avoiding a lossy re-encode.
	IlstPayload []byte

	FastStart bool
}
