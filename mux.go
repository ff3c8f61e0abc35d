package chapterforge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chapterforge/chapterforge/internal/aacsrc"
	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/chapterjson"
	"github.com/chapterforge/chapterforge/internal/m4a"
	"github.com/chapterforge/chapterforge/internal/moovbuild"
	"github.com/chapterforge/chapterforge/internal/mux"
	"github.com/chapterforge/chapterforge/internal/types"
)

// urlTrackName is the handler name the URL text track is authored
// under, matching the reference container's convention.
const urlTrackName = "Chapter URLs"

// MuxFromJSON authors a chapter container using a chapter JSON file
// (see internal/chapterjson for the shape) for both metadata and
// chapter samples. Image and cover paths inside the JSON are resolved
// relative to chapterJSONPath's directory.
func MuxFromJSON(inputAudioPath, chapterJSONPath, outputPath string, opts ...MuxOption) Status {
	raw, err := os.ReadFile(chapterJSONPath)
	if err != nil {
		return fail(&types.InputError{Path: chapterJSONPath, Reason: "read chapter JSON", Err: err})
	}
	doc, err := chapterjson.Decode(raw)
	if err != nil {
		return fail(err)
	}

	titles := make([]ChapterTextSample, len(doc.Chapters))
	var urls []ChapterTextSample
	var images []ChapterImageSample
	for i, c := range doc.Chapters {
		titles[i] = ChapterTextSample{Text: c.Title, StartMS: c.StartMS}
		if c.URL != "" || c.URLText != "" {
			if urls == nil {
				urls = make([]ChapterTextSample, 0, len(doc.Chapters))
			}
			urls = append(urls, ChapterTextSample{Href: c.URL, Text: c.URLText, StartMS: c.StartMS})
		}
		if c.Image != "" {
			data, err := os.ReadFile(chapterjson.ResolvePath(chapterJSONPath, c.Image))
			if err != nil {
				return fail(&types.InputError{Path: c.Image, Reason: "read chapter image", Err: err})
			}
			images = append(images, ChapterImageSample{Data: data, StartMS: c.StartMS})
		}
	}

	metadata := MetadataSet{
		Title:   doc.Title,
		Artist:  doc.Artist,
		Album:   doc.Album,
		Genre:   doc.Genre,
		Year:    doc.Year,
		Comment: doc.Comment,
	}
	if doc.Cover != "" {
		cover, err := os.ReadFile(chapterjson.ResolvePath(chapterJSONPath, doc.Cover))
		if err != nil {
			return fail(&types.InputError{Path: doc.Cover, Reason: "read cover image", Err: err})
		}
		metadata.Cover = cover
	}

	return Mux(inputAudioPath, titles, urls, images, &metadata, outputPath, opts...)
}

// Mux authors a chapter container from in-memory chapter data. urls,
// images, and metadata may each be nil or empty, which is treated as
// "omit that track"/"no metadata".
//
// SaveAs's pattern (file_write.go): the container is
// written to a temporary file in the output directory, then renamed
// into place atomically, so a failed or interrupted write never
// corrupts an existing file at outputPath.
func Mux(inputAudioPath string, titles, urls []ChapterTextSample, images []ChapterImageSample, metadata *MetadataSet, outputPath string, opts ...MuxOption) Status {
	options := defaultMuxOptions()
	for _, opt := range opts {
		opt(options)
	}

	audio, err := loadAudioSource(inputAudioPath)
	if err != nil {
		return fail(err)
	}

	in := mux.WriteInput{
		Audio:     audio,
		Titles:    toMuxTextSamples(titles),
		Images:    toMuxImageSamples(images),
		FastStart: options.fastStart,
	}
	if metadata != nil {
		in.Metadata = moovbuild.MetadataSet{
			Title:   metadata.Title,
			Artist:  metadata.Artist,
			Album:   metadata.Album,
			Genre:   metadata.Genre,
			Year:    metadata.Year,
			Comment: metadata.Comment,
			Cover:   metadata.Cover,
		}
	}
	if len(urls) > 0 {
		in.ExtraTextTracks = []mux.ExtraTextTrack{{HandlerName: urlTrackName, Samples: toMuxTextSamples(urls)}}
	}

	if err := writeAtomic(outputPath, in); err != nil {
		return fail(err)
	}

	return ok(fmt.Sprintf("wrote %s", outputPath))
}

// writeAtomic runs the mux orchestrator against a temp file in
// outputPath's directory, then renames it into place. Any failure
// cleans up the temp file instead of leaving a partial output behind.
func writeAtomic(outputPath string, in mux.WriteInput) error {
	outputDir := filepath.Dir(outputPath)
	tempFile, err := os.CreateTemp(outputDir, ".chapterforge-*.tmp")
	if err != nil {
		return &types.OutputError{Path: outputPath, Err: fmt.Errorf("create temp file: %w", err)}
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := mux.NewOrchestrator().Write(tempFile, in); err != nil {
		return &types.OutputError{Path: outputPath, Err: err}
	}
	if err := tempFile.Sync(); err != nil {
		return &types.OutputError{Path: outputPath, Err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err := tempFile.Close(); err != nil {
		return &types.OutputError{Path: outputPath, Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		return &types.OutputError{Path: outputPath, Err: fmt.Errorf("rename temp to output: %w", err)}
	}

	success = true
	return nil
}

// loadAudioSource reads inputAudioPath and recovers its AAC access
// units: a bare ADTS bitstream is framed directly, an MP4/M4A
// container has its selected audio track's sample tables reused.
// Grounded on aacsrc's own ADTS sync-word check (ExtractFromADTS) for
// distinguishing the two, since that is the only reliable signature a
// raw ADTS stream carries.
func loadAudioSource(path string) (*aacsrc.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.InputError{Path: path, Reason: "read audio source", Err: err}
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xF0 == 0xF0 {
		return aacsrc.ExtractFromADTS(data)
	}

	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), path)
	parsed, err := m4a.Parse(sr, int64(len(data)))
	if err != nil {
		return nil, err
	}
	track := parsed.SelectAudioTrack()
	if track == nil {
		return nil, &types.InvalidInputError{Reason: fmt.Sprintf("%s: no audio track found", path)}
	}

	return aacsrc.ExtractFromMP4(aacsrc.MP4Track{
		Reader:    sr,
		Timescale: track.Timescale,
		Stsd:      track.Stsd,
		Stts:      track.Stts,
		Stsc:      track.Stsc,
		Stsz:      track.Stsz,
		Stco:      track.Stco,
	})
}

func toMuxTextSamples(samples []ChapterTextSample) []mux.TextChapterSample {
	out := make([]mux.TextChapterSample, len(samples))
	for i, s := range samples {
		out[i] = mux.TextChapterSample{StartMS: s.StartMS, Text: s.Text, Href: s.Href}
	}
	return out
}

func toMuxImageSamples(samples []ChapterImageSample) []mux.ImageChapterSample {
	out := make([]mux.ImageChapterSample, len(samples))
	for i, s := range samples {
		out[i] = mux.ImageChapterSample{StartMS: s.StartMS, Data: s.Data}
	}
	return out
}
