package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// BuildMoov composes the top-level movie box: mvhd, the audio track,
// each text track in order, the optional image track, then udta.
// Grounded on original_source's build_moov (moov_builder.cpp).
func BuildMoov(timescale uint32, durationTS uint64, trakAudio *box.Box, textTracks []*box.Box, trakImage *box.Box, udta *box.Box) *box.Box {
	moov := box.New("moov")
	moov.Add(BuildMvhd(timescale, durationTS))
	moov.Add(trakAudio)
	for _, t := range textTracks {
		moov.Add(t)
	}
	if trakImage != nil {
		moov.Add(trakImage)
	}
	if udta != nil {
		moov.Add(udta)
	}
	return moov
}
