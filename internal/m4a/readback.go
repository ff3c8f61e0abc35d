package m4a

import (
	"encoding/binary"
	"strings"

	binaryio "github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/stbl"
	"github.com/chapterforge/chapterforge/internal/types"
)

// TextSample is one decoded tx3g sample: its text and href (a URL
// track sample without an href box has its text stored as the href)
// and its absolute start time.
type TextSample struct {
	Text    string
	Href    string
	StartMS int64
}

// ImageSample is one decoded JPEG still-image sample and its absolute
// start time.
type ImageSample struct {
	Data    []byte
	StartMS int64
}

// ReadResult is the fully decoded chapter material recovered from an
// M4A/MP4 source: the title-track samples, the URL-track samples (may
// be empty if the source has none), the image-track samples, and the
// top-level metadata.
type ReadResult struct {
	Titles   []TextSample
	Urls     []TextSample
	Images   []ImageSample
	Metadata Metadata
}

// Read parses a source container and decodes its chapter text tracks,
// chapter image track, and top-level metadata into a ReadResult.
//
// Grounded on parseQuickTimeChapters/parseTextTrackChapters
// (internal/m4a/chapters.go), generalized from "find one chapter track"
// to classify and decode every text track present (title and,
// optionally, URL), and extended to also decode an image track and
// the ilst metadata in the same pass.
func Read(sr *binaryio.SafeReader, size int64) (*ReadResult, error) {
	parsed, err := Parse(sr, size)
	if err != nil {
		return nil, err
	}

	result := &ReadResult{}
	if len(parsed.IlstPayload) > 0 {
		result.Metadata = DecodeIlst(parsed.IlstPayload)
	}

	textTracks := make([]*TrackParseResult, 0)
	var imageTrack *TrackParseResult
	for i := range parsed.Tracks {
		t := &parsed.Tracks[i]
		switch t.HandlerType {
		case "text":
			textTracks = append(textTracks, t)
		case "vide":
			imageTrack = t
		}
	}

	titleTrack, urlTrack := classifyTextTracks(textTracks)

	if titleTrack != nil {
		samples, err := decodeTextTrack(sr, titleTrack, false)
		if err != nil {
			return nil, err
		}
		result.Titles = samples
	}
	if urlTrack != nil {
		samples, err := decodeTextTrack(sr, urlTrack, true)
		if err != nil {
			return nil, err
		}
		result.Urls = samples
	}
	if imageTrack != nil {
		samples, err := decodeImageTrack(sr, imageTrack)
		if err != nil {
			return nil, err
		}
		result.Images = samples
	}

	return result, nil
}

// classifyTextTracks splits text-handler tracks into a title track and
// a URL track: the track whose handler name contains "url" (case
// insensitive) is the URL track; with exactly two text tracks and no
// name match, the second is treated as the URL track, matching how
// ChapterForge itself names the tracks it authors.
func classifyTextTracks(tracks []*TrackParseResult) (title, url *TrackParseResult) {
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.HandlerName), "url") {
			url = t
		}
	}
	remaining := make([]*TrackParseResult, 0, len(tracks))
	for _, t := range tracks {
		if t == url {
			continue
		}
		remaining = append(remaining, t)
	}

	if url == nil && len(tracks) == 2 {
		title, url = tracks[0], tracks[1]
		return title, url
	}
	if len(remaining) > 0 {
		title = remaining[0]
	}
	return title, url
}

// decodeTextTrack resolves a text track's samples via its stbl and
// decodes each tx3g sample. For a URL track (asURL), a sample that
// carries an href modifier box keeps its text and href as decoded (the
// way ChapterForge authors URL samples: url_text as text, url in the
// href box); a sample with no href box is a plain-text URL, and its
// text is taken as the href.
func decodeTextTrack(sr *binaryio.SafeReader, track *TrackParseResult, asURL bool) ([]TextSample, error) {
	locations, startTimes, err := resolveSampleLocations(track)
	if err != nil {
		return nil, err
	}

	samples := make([]TextSample, 0, len(locations))
	for i, loc := range locations {
		buf := make([]byte, loc.Size)
		if err := sr.ReadAt(buf, loc.Offset, "tx3g sample"); err != nil {
			return nil, err
		}
		text, href := decodeTx3gSample(buf)
		sample := TextSample{StartMS: startTimes[i]}
		if asURL && href == "" {
			sample.Href = text
		} else {
			sample.Text = text
			sample.Href = href
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// decodeTx3gSample splits a tx3g sample into its text body and, if
// present, the href carried by a trailing "href" modifier box.
func decodeTx3gSample(buf []byte) (text, href string) {
	if len(buf) < 2 {
		return "", ""
	}
	textLen := int(binary.BigEndian.Uint16(buf[0:2]))
	if 2+textLen > len(buf) {
		textLen = len(buf) - 2
	}
	text = string(buf[2 : 2+textLen])

	rest := buf[2+textLen:]
	if len(rest) < 12 {
		return text, ""
	}
	// [size(4)]["href"][u16 reserved][u16 reserved][u8 len][url...]
	if string(rest[4:8]) != "href" {
		return text, ""
	}
	urlLen := int(rest[12])
	start := 13
	if start+urlLen > len(rest) {
		urlLen = len(rest) - start
	}
	if urlLen < 0 {
		return text, ""
	}
	return text, string(rest[start : start+urlLen])
}

// decodeImageTrack resolves an image track's samples via its stbl and
// reads each raw JPEG sample.
func decodeImageTrack(sr *binaryio.SafeReader, track *TrackParseResult) ([]ImageSample, error) {
	locations, startTimes, err := resolveSampleLocations(track)
	if err != nil {
		return nil, err
	}

	samples := make([]ImageSample, 0, len(locations))
	for i, loc := range locations {
		buf := make([]byte, loc.Size)
		if err := sr.ReadAt(buf, loc.Offset, "jpeg sample"); err != nil {
			return nil, err
		}
		samples = append(samples, ImageSample{Data: buf, StartMS: startTimes[i]})
	}
	return samples, nil
}

// resolveSampleLocations decodes a track's stsc/stco/stsz into sample
// byte ranges and its stts into absolute millisecond start times.
func resolveSampleLocations(track *TrackParseResult) ([]stbl.SampleLocation, []int64, error) {
	sizes, err := stbl.ParseSTSZ(track.Stsz)
	if err != nil {
		return nil, nil, err
	}
	scEntries, err := stbl.ParseSTSC(track.Stsc)
	if err != nil {
		return nil, nil, err
	}
	offsets, err := stbl.ParseSTCO(track.Stco)
	if err != nil {
		return nil, nil, err
	}
	sttsEntries, err := stbl.ParseSTTS(track.Stts)
	if err != nil {
		return nil, nil, err
	}

	plan := stbl.ChunkPlanFromSTSC(scEntries, len(sizes))
	locations := stbl.LocateSamples(sizes, plan, offsets)

	if track.Timescale == 0 {
		return nil, nil, &types.ReadIncompleteError{Reason: "track has zero timescale"}
	}

	durations := stbl.ExpandSTTS(sttsEntries)
	startTimes := make([]int64, 0, len(locations))
	var cumTicks uint64
	for i := range locations {
		startTimes = append(startTimes, int64(cumTicks*1000/uint64(track.Timescale)))
		if i < len(durations) {
			cumTicks += uint64(durations[i])
		}
	}

	return locations, startTimes, nil
}
