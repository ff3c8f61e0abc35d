// Package mdatio writes the mdat sample payload and computes (or
// patches) the chunk offsets every track's stco table needs once the
// final file layout is known. The offset arithmetic is a single shared
// function used by both the real writer and the fast-start dry-run
// simulator, so the two can never disagree about where a chunk lands.
package mdatio

import "github.com/chapterforge/chapterforge/internal/stbl"

// TrackSamples is one track's samples in mdat write order, together
// with the chunk plan governing how they're grouped for stco/stsc.
type TrackSamples struct {
	Samples [][]byte
	Plan    stbl.ChunkPlan
}

func (t TrackSamples) size() int64 {
	var total int64
	for _, s := range t.Samples {
		total += int64(len(s))
	}
	return total
}

// Offsets holds the absolute file offset of every chunk's first byte,
// in track declaration order: audio, then each text track, then the
// image track (nil/empty when that track is absent).
type Offsets struct {
	PayloadStart int64
	Audio        []uint32
	Text         [][]uint32
	Image        []uint32
}

// trackOffsets returns the absolute file offset of each chunk's first
// sample, given where the track's first byte lands (start). plan
// defaults to one sample per chunk when empty, mirroring the reference
// writer's fallback.
func trackOffsets(samples [][]byte, plan stbl.ChunkPlan, start int64) []uint32 {
	if len(samples) == 0 {
		return nil
	}
	if len(plan) == 0 {
		plan = stbl.OneSamplePerChunk(len(samples))
	}

	var offsets []uint32
	cursor := start
	sampleIndex := 0
	for _, chunkSize := range plan {
		if sampleIndex >= len(samples) {
			break
		}
		offsets = append(offsets, uint32(cursor))
		for i := uint32(0); i < chunkSize && sampleIndex < len(samples); i++ {
			cursor += int64(len(samples[sampleIndex]))
			sampleIndex++
		}
	}
	// Stragglers when the plan undershoots the sample count.
	if sampleIndex < len(samples) {
		offsets = append(offsets, uint32(cursor))
		for ; sampleIndex < len(samples); sampleIndex++ {
			cursor += int64(len(samples[sampleIndex]))
		}
	}
	return offsets
}

// PayloadSize returns the total byte length of mdat's payload (every
// sample from every track, concatenated in write order), excluding the
// 8-byte box header.
func PayloadSize(audio TrackSamples, texts []TrackSamples, image TrackSamples) int64 {
	total := audio.size()
	for _, t := range texts {
		total += t.size()
	}
	total += image.size()
	return total
}

// ComputeOffsets derives the absolute offset of every chunk across all
// tracks assuming the payload begins at payloadStart, without touching
// any sample bytes. The fast-start path calls this before the mdat
// payload itself exists (payloadStart is computed from ftyp+moov
// sizes); the real writer calls it with the true post-header position.
func ComputeOffsets(payloadStart int64, audio TrackSamples, texts []TrackSamples, image TrackSamples) *Offsets {
	offs := &Offsets{PayloadStart: payloadStart}
	cursor := payloadStart

	offs.Audio = trackOffsets(audio.Samples, audio.Plan, cursor)
	cursor += audio.size()

	offs.Text = make([][]uint32, len(texts))
	for i, t := range texts {
		offs.Text[i] = trackOffsets(t.Samples, t.Plan, cursor)
		cursor += t.size()
	}

	offs.Image = trackOffsets(image.Samples, image.Plan, cursor)

	return offs
}
