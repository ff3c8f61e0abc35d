package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// Track ID assignment: the audio track is always 1, the
// first text (title) track is 2, any additional text (URL) track is 3,
// and the image track comes after every text track.
const (
	TrackIDAudio     = 1
	TrackIDFirstText = 2
)

// ImageTrackID returns the track ID of the image chapter track given
// how many text tracks precede it.
func ImageTrackID(textTrackCount int) uint32 {
	return uint32(TrackIDFirstText + textTrackCount)
}

// ChapterTimescale is the fixed timescale (milliseconds) used by every
// text and image chapter track, independent of the audio timescale.
const ChapterTimescale = 1000

// BuildTrakAudio composes the audio track: tkhd, an optional tref/chap
// listing chapterTrackIDs (the orchestrator passes the title track and,
// if present, the image track), and mdia(mdhd+hdlr_sound+
// minf(smhd+dinf+stbl)). mediaDurationTS is the duration in the
// track's own timescale (audioTimescale, fed to mdhd); tkhdDurationTS
// is the same duration already converted to the movie's timescale
// (fed to tkhd). The two differ whenever audioTimescale != 600, so
// they cannot be collapsed into one parameter. Grounded on
// original_source's build_trak_audio (trak_builder.cpp).
func BuildTrakAudio(mediaDurationTS, tkhdDurationTS uint64, audioTimescale uint32, stblAudio *box.Box, chapterTrackIDs []uint32) *box.Box {
	trak := box.New("trak")
	trak.Add(BuildTkhdAudio(TrackIDAudio, tkhdDurationTS))

	if len(chapterTrackIDs) > 0 {
		trak.Add(buildTrefChap(chapterTrackIDs))
	}

	minf := box.New("minf")
	minf.Add(BuildSmhd(), BuildDinf(), stblAudio)

	mdia := box.New("mdia")
	mdia.Add(BuildMdhd(audioTimescale, mediaDurationTS, LanguageUndetermined), BuildHdlrSound(), minf)
	trak.Add(mdia)

	return trak
}

// buildTrefChap builds a tref box containing a single chap box whose
// payload is the big-endian track IDs of the chapter tracks the audio
// track references.
func buildTrefChap(chapterTrackIDs []uint32) *box.Box {
	p := &buffer{}
	for _, id := range chapterTrackIDs {
		if id == 0 {
			continue
		}
		p.u32(id)
	}
	chap := box.NewWithPayload("chap", p.bytes())
	tref := box.New("tref")
	tref.Add(chap)
	return tref
}

// BuildTrakText composes a text chapter track (title or URL): tkhd,
// mdia(mdhd(eng)+hdlr_text(name)+minf(nmhd+dinf+stbl)). mediaDurationTS
// is in ChapterTimescale (fed to mdhd); tkhdDurationTS is the same
// duration in the movie's timescale (fed to tkhd). visible marks
// whether the track is enabled/in-movie/in-preview; the mux
// orchestrator passes true for both the title track and any URL
// track, matching original_source's build_trak_text call sites
// (trak_builder.cpp), which never hide the URL track.
func BuildTrakText(trackID uint32, mediaDurationTS, tkhdDurationTS uint64, handlerName string, visible bool, stblText *box.Box) *box.Box {
	trak := box.New("trak")
	trak.Add(BuildTkhdText(trackID, tkhdDurationTS, visible))

	minf := box.New("minf")
	minf.Add(BuildNmhd(), BuildDinf(), stblText)

	mdia := box.New("mdia")
	mdia.Add(BuildMdhd(ChapterTimescale, mediaDurationTS, LanguageEnglish), BuildHdlrText(handlerName), minf)
	trak.Add(mdia)

	return trak
}

// BuildTrakImage composes the image chapter track: tkhd, edts/elst
// mapping the full movie duration onto the track's media, mdia(mdhd(eng)
// +hdlr_video+minf(vmhd+dinf+stbl)). mediaDurationTS is in
// ChapterTimescale; tkhdDurationTS is the movie-timescale duration fed
// to both tkhd and the edts segment duration (edts always expresses
// its segment length in the movie's timescale). Grounded on
// original_source's build_trak_image (trak_builder.cpp).
func BuildTrakImage(trackID uint32, mediaDurationTS, tkhdDurationTS uint64, width, height int, stblImage *box.Box) *box.Box {
	trak := box.New("trak")
	trak.Add(BuildTkhdImage(trackID, tkhdDurationTS, width, height))
	trak.Add(buildEdtsElst(tkhdDurationTS))

	minf := box.New("minf")
	minf.Add(BuildVmhd(), BuildDinf(), stblImage)

	mdia := box.New("mdia")
	mdia.Add(BuildMdhd(ChapterTimescale, mediaDurationTS, LanguageEnglish), BuildHdlrVideo(), minf)
	trak.Add(mdia)

	return trak
}

// buildEdtsElst builds a single-entry edit list mapping the full movie
// duration (in mvhd's timescale) onto media time 0 at normal rate.
func buildEdtsElst(segmentDurationTS uint64) *box.Box {
	p := &buffer{}
	p.header(0, 0)
	p.u32(1) // entry_count
	p.u32(uint32(segmentDurationTS))
	p.u32(0)          // media_time
	p.u32(0x00010000) // media_rate = 1.0

	elst := box.NewWithPayload("elst", p.bytes())
	edts := box.New("edts")
	edts.Add(elst)
	return edts
}
