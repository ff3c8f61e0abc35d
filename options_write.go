package chapterforge

// MuxOption configures behavior when authoring a container.
//
// Options use the functional options pattern.
//
// Example:
//
//	status := chapterforge.MuxFromJSON("book.aac", "chapters.json", "out.m4a",
//	    chapterforge.WithFastStart())
type MuxOption func(*muxOptions)

type muxOptions struct {
	fastStart bool
}

func defaultMuxOptions() *muxOptions {
	return &muxOptions{}
}

// WithFastStart places moov before mdat in the output file, so
// streaming/progressive players can begin playback without reading
// the whole file first. By default chapterforge writes the trailing-
// moov layout.
func WithFastStart() MuxOption {
	return func(o *muxOptions) {
		o.fastStart = true
	}
}
