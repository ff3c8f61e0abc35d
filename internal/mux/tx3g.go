package mux

import (
	"github.com/chapterforge/chapterforge/internal/stbl"
	"github.com/chapterforge/chapterforge/internal/timing"
)

// EncodeTextTrackSamples encodes every chapter sample into tx3g wire
// bytes, then appends one duplicate of the final encoded sample.
// Apple's own chapter tracks carry this trailing sample past the last
// real chapter; original_source's write_mp4 replicates it explicitly
// ("pad trailing sample") for both the title track and every extra
// text track, so this does the same.
func EncodeTextTrackSamples(samples []TextChapterSample) [][]byte {
	if len(samples) == 0 {
		return nil
	}
	encoded := make([][]byte, 0, len(samples)+1)
	for _, s := range samples {
		encoded = append(encoded, stbl.EncodeTextSample(s.Text, s.Href))
	}
	encoded = append(encoded, encoded[len(encoded)-1])
	return encoded
}

// chapterDurationsMS derives one duration per start time in startMS,
// against a shared total duration, and returns them converted to the
// uint32 form every stbl/chpl builder expects.
func chapterDurationsMS(startMS []int64, totalMS int64) []uint32 {
	durations := timing.DeriveDurations(startMS, totalMS)
	out := make([]uint32, len(durations))
	for i, d := range durations {
		out[i] = uint32(d)
	}
	return out
}

// textChapterStartMS extracts the start times from a text sample list.
func textChapterStartMS(samples []TextChapterSample) []int64 {
	startMS := make([]int64, len(samples))
	for i, s := range samples {
		startMS[i] = s.StartMS
	}
	return startMS
}

// textTrackDurationsMS derives one stts duration per encoded sample,
// including the trailing pad sample added by EncodeTextTrackSamples.
// The pad sample carries a nominal 1ms duration: it exists only so
// players see a sample past the last real chapter, not to occupy
// meaningful track time.
func textTrackDurationsMS(samples []TextChapterSample, totalMS int64) []uint32 {
	if len(samples) == 0 {
		return nil
	}
	durations := chapterDurationsMS(textChapterStartMS(samples), totalMS)
	out := make([]uint32, len(durations)+1)
	copy(out, durations)
	out[len(out)-1] = 1
	return out
}

// sampleByteSizes returns the byte length of each encoded sample.
func sampleByteSizes(samples [][]byte) []uint32 {
	sizes := make([]uint32, len(samples))
	for i, s := range samples {
		sizes[i] = uint32(len(s))
	}
	return sizes
}
