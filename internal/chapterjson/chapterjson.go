// Package chapterjson decodes the chapter/metadata JSON file accepted
// by the public Mux API and the CLI's JSON mode.
//
// Uses encoding/json rather than a third-party decoder: nothing in
// the reference corpus this module was built from reaches for one for
// a format this simple (see DESIGN.md).
package chapterjson

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/chapterforge/chapterforge/internal/types"
)

// Chapter is one chapter entry: its start time, title, and optional
// image/URL fields.
type Chapter struct {
	StartMS int64  `json:"start_ms"`
	Title   string `json:"title"`
	Image   string `json:"image,omitempty"`
	URL     string `json:"url,omitempty"`
	URLText string `json:"url_text,omitempty"`
}

// Document is the decoded top-level JSON object: metadata fields plus
// the chapter array.
type Document struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Genre   string `json:"genre"`
	Year    string `json:"year"`
	Comment string `json:"comment"`
	Cover   string `json:"cover"`

	Chapters []Chapter `json:"chapters"`
}

// HasURLTrack reports whether any chapter sets url or url_text, which
// is when the mux must emit a second (URL) text track.
func (d *Document) HasURLTrack() bool {
	for _, c := range d.Chapters {
		if c.URL != "" || c.URLText != "" {
			return true
		}
	}
	return false
}

// Decode parses raw JSON bytes into a Document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.InvalidInputError{Reason: fmt.Sprintf("malformed chapter JSON: %v", err)}
	}
	return &doc, nil
}

// ResolvePath resolves a chapter's image path (or the document's cover
// path) against the directory the JSON file itself lives in, matching
// the "path relative to the JSON file" rule for image/cover paths.
func ResolvePath(jsonPath, relative string) string {
	if relative == "" || filepath.IsAbs(relative) {
		return relative
	}
	return filepath.Join(filepath.Dir(jsonPath), relative)
}
