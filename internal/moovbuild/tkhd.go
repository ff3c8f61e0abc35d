package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// tkhd flag values: enabled|in-movie|in-preview for tracks that
// must play/display, enabled-only for a text track the player need not
// render directly.
const (
	tkhdFlagsVisible = 0x000007
	tkhdFlagsHidden  = 0x000001
)

// buildTkhdCommon builds a version-0 tkhd payload. Grounded on
// original_source's build_tkhd_common (tkhd_builder.cpp): 84-byte
// Apple-style layout, identity matrix, width/height in 16.16 fixed.
func buildTkhdCommon(trackID uint32, durationTS uint64, flags uint32, volume uint16, width, height float64) *box.Box {
	p := &buffer{}
	p.header(0, flags)
	p.zero(8) // creation_time + modification_time
	p.u32(trackID)
	p.zero(4) // reserved
	p.u32(uint32(durationTS))
	p.zero(8) // reserved
	p.u16(0)  // layer
	p.u16(0)  // alternate_group
	p.u16(volume)
	p.zero(2) // reserved
	p.raw(identityMatrix())
	p.fixed16_16(width)
	p.fixed16_16(height)
	return box.NewWithPayload("tkhd", p.bytes())
}

// BuildTkhdAudio builds the audio track header: enabled, volume 1.0,
// no visual dimensions.
func BuildTkhdAudio(trackID uint32, durationTS uint64) *box.Box {
	return buildTkhdCommon(trackID, durationTS, tkhdFlagsVisible, 0x0100, 0, 0)
}

// BuildTkhdText builds a text-chapter-track header. visible controls
// whether the track is marked enabled/in-movie/in-preview (the
// title/URL track that must be present for players to discover
// chapters) or merely enabled.
func BuildTkhdText(trackID uint32, durationTS uint64, visible bool) *box.Box {
	flags := uint32(tkhdFlagsHidden)
	if visible {
		flags = tkhdFlagsVisible
	}
	return buildTkhdCommon(trackID, durationTS, flags, 0, 0, 0)
}

// BuildTkhdImage builds the image-chapter-track header: enabled,
// volume 0, width/height from the first chapter JPEG.
func BuildTkhdImage(trackID uint32, durationTS uint64, width, height int) *box.Box {
	return buildTkhdCommon(trackID, durationTS, tkhdFlagsVisible, 0, float64(width), float64(height))
}
