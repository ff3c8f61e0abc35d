package chapterforge

import "github.com/chapterforge/chapterforge/internal/m4a"

// ok builds a successful Status with message.
func ok(message string) Status {
	return Status{Ok: true, Message: message}
}

// fail builds a failed Status from err, which is always non-nil.
func fail(err error) Status {
	return Status{Ok: false, Message: err.Error()}
}

// ReadResult is the fully decoded chapter material recovered from an
// M4A/MP4 source: the title-track samples, the URL-track samples (may
// be empty if the source has none), the image-track samples, and the
// top-level metadata.
type ReadResult struct {
	Titles   []ChapterTextSample
	Urls     []ChapterTextSample
	Images   []ChapterImageSample
	Metadata MetadataSet
}

func fromInternalReadResult(r *m4a.ReadResult) *ReadResult {
	out := &ReadResult{
		Titles: make([]ChapterTextSample, len(r.Titles)),
		Urls:   make([]ChapterTextSample, len(r.Urls)),
		Images: make([]ChapterImageSample, len(r.Images)),
		Metadata: MetadataSet{
			Title:   r.Metadata.Title,
			Artist:  r.Metadata.Artist,
			Album:   r.Metadata.Album,
			Genre:   r.Metadata.Genre,
			Year:    r.Metadata.Year,
			Comment: r.Metadata.Comment,
			Cover:   r.Metadata.Cover,
		},
	}
	for i, t := range r.Titles {
		out.Titles[i] = ChapterTextSample{Text: t.Text, Href: t.Href, StartMS: t.StartMS}
	}
	for i, u := range r.Urls {
		out.Urls[i] = ChapterTextSample{Text: u.Text, Href: u.Href, StartMS: u.StartMS}
	}
	for i, im := range r.Images {
		out.Images[i] = ChapterImageSample{Data: im.Data, StartMS: im.StartMS}
	}
	return out
}
