// Package chapterforge authors and reads MPEG-4 audio containers
// (M4A) carrying an AAC elementary stream plus synchronized chapter
// tracks: titles, URLs, and JPEG thumbnails, in the on-disk shape
// Apple players expect.
//
// # Quick Start
//
// Mux from a chapter JSON file:
//
//	status := chapterforge.MuxFromJSON("book.aac", "chapters.json", "out.m4a", chapterforge.WithFastStart())
//	if !status.Ok {
//		log.Fatal(status.Message)
//	}
//
// Mux from in-memory chapter data:
//
//	status := chapterforge.Mux("book.aac", titles, nil, nil, nil, "out.m4a")
//
// Read chapters back from a produced or foreign file:
//
//	result, err := chapterforge.ReadM4A("out.m4a")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, t := range result.Titles {
//		fmt.Printf("%dms: %s\n", t.StartMS, t.Text)
//	}
//
// # Architecture
//
// The audio elementary stream is always copied verbatim; chapterforge
// never decodes or re-encodes audio or images. Authoring derives
// per-chapter durations from absolute start times, builds the ISO/BMFF
// box tree (moov/trak/stbl), writes mdat, and patches chunk offset
// tables once the on-disk layout (fast-start or trailing-moov) is
// known.
//
// # Error Handling
//
// Mux* functions return a Status{Ok, Message} rather than an error,
// matching the CLI's own success/failure reporting; ReadM4A returns a
// conventional (*ReadResult, error) pair. A failed Status carries only
// the failing error's text in Message. ReadM4A returns the underlying
// error, so a typed parse error (see the aliases in errors.go) can be
// matched with errors.As.
package chapterforge
