package chapterforge

// ChapterTextSample is one chapter's title (or URL-track text) and its
// absolute start time. Href carries the chapter's URL when it
// populates a URL track's sample; Text carries the title otherwise.
// Samples must be supplied in non-decreasing StartMS order.
type ChapterTextSample struct {
	Text    string
	Href    string
	StartMS int64
}

// ChapterImageSample is one chapter's thumbnail: raw JPEG bytes
// (validated to be 4:2:0 subsampled) and its absolute start time.
type ChapterImageSample struct {
	Data    []byte
	StartMS int64
}

// MetadataSet is the top-level iTunes-style metadata a container
// carries: title, artist, album, genre, year, comment, and a JPEG
// cover. Any field may be left empty.
type MetadataSet struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Year    string
	Comment string
	Cover   []byte
}

// Status is the outcome of a Mux* call: Ok reports success, and
// Message carries either a short human-readable confirmation or the
// reason for failure.
type Status struct {
	Ok      bool
	Message string
}
