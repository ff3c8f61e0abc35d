// Package stbl builds per-track sample tables (stsd/stts/stsc/stsz/stco,
// plus stss for sync samples) for the three track kinds ChapterForge
// authors: audio, tx3g chapter text, and JPEG chapter images. Builders
// are plain functions that take typed inputs and return a stbl *box.Box;
// the mux orchestrator composes them into tracks.
package stbl

import (
	"strconv"

	"github.com/chapterforge/chapterforge/internal/box"
)

// ChunkPlan is a sequence of per-chunk sample counts: ChunkPlan[i] is
// how many consecutive samples chunk i contains.
type ChunkPlan []uint32

// OneSamplePerChunk returns a chunk plan with exactly one sample per
// chunk, the policy used for all text and image tracks.
func OneSamplePerChunk(sampleCount int) ChunkPlan {
	plan := make(ChunkPlan, sampleCount)
	for i := range plan {
		plan[i] = 1
	}
	return plan
}

// SynthesizeAudioChunkPlan groups samples into fixed-size chunks of
// groupSize, with a single remainder chunk if sampleCount isn't an
// exact multiple. This is the fallback audio chunk plan used
// when no source stsc is available to derive one from.
func SynthesizeAudioChunkPlan(sampleCount, groupSize int) ChunkPlan {
	if sampleCount <= 0 {
		return nil
	}
	if groupSize <= 0 {
		groupSize = 1
	}

	var plan ChunkPlan
	remaining := sampleCount
	for remaining > groupSize {
		plan = append(plan, uint32(groupSize))
		remaining -= groupSize
	}
	if remaining > 0 {
		plan = append(plan, uint32(remaining))
	}
	return plan
}

// StscEntry is one run-length entry of a sample-to-chunk table: chunks
// from FirstChunk onward (1-based, inclusive, until the next entry's
// FirstChunk) each contain SamplesPerChunk samples.
type StscEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescIdx   uint32
}

// ChunkPlanFromSTSC expands a run-length stsc table into a flat
// per-chunk sample count, clamped so the total never exceeds
// totalSamples: e.g. one entry {first_chunk:1, samples_per_chunk:3}
// over 10 samples yields [3,3,3,1], the final chunk holding whatever
// samples remain.
func ChunkPlanFromSTSC(entries []StscEntry, totalSamples int) ChunkPlan {
	if len(entries) == 0 || totalSamples <= 0 {
		return nil
	}

	var plan ChunkPlan
	remaining := totalSamples

	for i, e := range entries {
		var chunkCount uint32
		if i+1 < len(entries) {
			chunkCount = entries[i+1].FirstChunk - e.FirstChunk
		} else {
			// Last run: emit chunks of SamplesPerChunk until samples run out.
			for remaining > 0 {
				take := e.SamplesPerChunk
				if uint32(remaining) < take {
					take = uint32(remaining)
				}
				plan = append(plan, take)
				remaining -= int(take)
			}
			break
		}

		for c := uint32(0); c < chunkCount && remaining > 0; c++ {
			take := e.SamplesPerChunk
			if uint32(remaining) < take {
				take = uint32(remaining)
			}
			plan = append(plan, take)
			remaining -= int(take)
		}
	}

	return plan
}

// CompressToSTSC run-length compresses a chunk plan into an stsc table:
// consecutive chunks with the same sample count collapse into one
// entry. Every entry uses sample description index 1 (ChapterForge
// never emits more than one sample description per track).
func CompressToSTSC(plan ChunkPlan) []StscEntry {
	var entries []StscEntry
	for i, count := range plan {
		chunkNum := uint32(i + 1)
		if len(entries) > 0 && entries[len(entries)-1].SamplesPerChunk == count {
			continue
		}
		entries = append(entries, StscEntry{
			FirstChunk:      chunkNum,
			SamplesPerChunk: count,
			SampleDescIdx:   1,
		})
	}
	return entries
}

// BuildSTSC serializes a sample-to-chunk FullBox from entries.
func BuildSTSC(entries []StscEntry) *box.Box {
	buf := &buffer{}
	buf.header(0, 0)
	buf.u32(uint32(len(entries)))
	for _, e := range entries {
		buf.u32(e.FirstChunk)
		buf.u32(e.SamplesPerChunk)
		buf.u32(e.SampleDescIdx)
	}
	return box.NewWithPayload("stsc", buf.bytes())
}

// SttsEntry is one run-length entry of a time-to-sample table.
type SttsEntry struct {
	SampleCount uint32
	SampleDelta uint32
}

// CompressToSTTS run-length compresses per-sample durations into an
// stts table.
func CompressToSTTS(durations []uint32) []SttsEntry {
	var entries []SttsEntry
	for _, d := range durations {
		if len(entries) > 0 && entries[len(entries)-1].SampleDelta == d {
			entries[len(entries)-1].SampleCount++
			continue
		}
		entries = append(entries, SttsEntry{SampleCount: 1, SampleDelta: d})
	}
	return entries
}

// ExpandedSTTS builds one (count=1, duration) entry per sample,
// without any run-length collapsing. Text and image chapter tracks
// must carry an explicit entry per sample even when consecutive
// durations repeat, matching the golden chapter files; only audio
// uses a single constant-duration run.
func ExpandedSTTS(durations []uint32) []SttsEntry {
	entries := make([]SttsEntry, len(durations))
	for i, d := range durations {
		entries[i] = SttsEntry{SampleCount: 1, SampleDelta: d}
	}
	return entries
}

// BuildSTTS serializes a time-to-sample FullBox from entries.
func BuildSTTS(entries []SttsEntry) *box.Box {
	buf := &buffer{}
	buf.header(0, 0)
	buf.u32(uint32(len(entries)))
	for _, e := range entries {
		buf.u32(e.SampleCount)
		buf.u32(e.SampleDelta)
	}
	return box.NewWithPayload("stts", buf.bytes())
}

// BuildSTSZ serializes a sample-size FullBox. ChapterForge always
// writes the explicit per-sample table form (SampleSize field = 0)
// rather than the constant-size shorthand, matching what this repo's
// own stsz reader (ParseSTSZ, called by internal/m4a's stbl capture) expects to
// find across both reused and synthesized tracks.
func BuildSTSZ(sizes []uint32) *box.Box {
	buf := &buffer{}
	buf.header(0, 0)
	buf.u32(0) // sample_size = 0: sizes are explicit below
	buf.u32(uint32(len(sizes)))
	for _, s := range sizes {
		buf.u32(s)
	}
	return box.NewWithPayload("stsz", buf.bytes())
}

// BuildSTCOPlaceholder serializes a chunk-offset FullBox with
// numChunks zero entries; PatchSTCO overwrites them once the final
// file layout is known.
func BuildSTCOPlaceholder(numChunks int) *box.Box {
	buf := &buffer{}
	buf.header(0, 0)
	buf.u32(uint32(numChunks))
	for i := 0; i < numChunks; i++ {
		buf.u32(0)
	}
	return box.NewWithPayload("stco", buf.bytes())
}

// PatchSTCO overwrites an existing stco box's chunk-offset entries in
// place with absolute file offsets. len(offsets) must equal the
// entry count the box was built with.
func PatchSTCO(stco *box.Box, offsets []uint32) error {
	// Payload layout: version+flags(4) + entry_count(4) + entries(4 each).
	const headerLen = 8
	needed := headerLen + len(offsets)*4
	if len(stco.Payload) < needed {
		return errShortSTCOPayload(len(stco.Payload), needed)
	}
	for i, off := range offsets {
		pos := headerLen + i*4
		stco.Payload[pos] = byte(off >> 24)
		stco.Payload[pos+1] = byte(off >> 16)
		stco.Payload[pos+2] = byte(off >> 8)
		stco.Payload[pos+3] = byte(off)
	}
	return nil
}

// BuildSTSS serializes a sync-sample FullBox marking every sample
// (1..sampleCount) as a sync point, used for the image track.
func BuildSTSS(sampleCount int) *box.Box {
	buf := &buffer{}
	buf.header(0, 0)
	buf.u32(uint32(sampleCount))
	for i := 1; i <= sampleCount; i++ {
		buf.u32(uint32(i))
	}
	return box.NewWithPayload("stss", buf.bytes())
}

// ParseSTSC decodes a raw stsc FullBox payload (version+flags already
// included) into its run-length entries.
func ParseSTSC(payload []byte) ([]StscEntry, error) {
	if len(payload) < 8 {
		return nil, errShortPayload("stsc", len(payload), 8)
	}
	count := be32(payload[4:8])
	need := 8 + int(count)*12
	if len(payload) < need {
		return nil, errShortPayload("stsc", len(payload), need)
	}
	entries := make([]StscEntry, count)
	for i := range entries {
		base := 8 + i*12
		entries[i] = StscEntry{
			FirstChunk:      be32(payload[base : base+4]),
			SamplesPerChunk: be32(payload[base+4 : base+8]),
			SampleDescIdx:   be32(payload[base+8 : base+12]),
		}
	}
	return entries, nil
}

// ParseSTSZ decodes a raw stsz FullBox payload into per-sample sizes.
// When the box uses the constant-size shorthand (sample_size != 0),
// the returned slice repeats that size sampleCount times.
func ParseSTSZ(payload []byte) ([]uint32, error) {
	if len(payload) < 12 {
		return nil, errShortPayload("stsz", len(payload), 12)
	}
	sampleSize := be32(payload[4:8])
	count := be32(payload[8:12])

	if sampleSize != 0 {
		sizes := make([]uint32, count)
		for i := range sizes {
			sizes[i] = sampleSize
		}
		return sizes, nil
	}

	need := 12 + int(count)*4
	if len(payload) < need {
		return nil, errShortPayload("stsz", len(payload), need)
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		base := 12 + i*4
		sizes[i] = be32(payload[base : base+4])
	}
	return sizes, nil
}

// ParseSTTS decodes a raw stts FullBox payload into its run-length entries.
func ParseSTTS(payload []byte) ([]SttsEntry, error) {
	if len(payload) < 8 {
		return nil, errShortPayload("stts", len(payload), 8)
	}
	count := be32(payload[4:8])
	need := 8 + int(count)*8
	if len(payload) < need {
		return nil, errShortPayload("stts", len(payload), need)
	}
	entries := make([]SttsEntry, count)
	for i := range entries {
		base := 8 + i*8
		entries[i] = SttsEntry{
			SampleCount: be32(payload[base : base+4]),
			SampleDelta: be32(payload[base+4 : base+8]),
		}
	}
	return entries, nil
}

// ExpandSTTS turns run-length stts entries into one duration-in-ticks
// value per sample.
func ExpandSTTS(entries []SttsEntry) []uint32 {
	var durations []uint32
	for _, e := range entries {
		for i := uint32(0); i < e.SampleCount; i++ {
			durations = append(durations, e.SampleDelta)
		}
	}
	return durations
}

// SampleLocation is one sample's absolute byte range within the
// container, resolved from stsc/stco/stsz.
type SampleLocation struct {
	Offset int64
	Size   uint32
}

// LocateSamples expands a chunk plan against chunk offsets and sample
// sizes to produce each sample's absolute file offset and size. Used
// by both mux-side sample reuse and read-back, so the stsc/stco/stsz
// walk exists in exactly one place.
func LocateSamples(sizes []uint32, plan ChunkPlan, offsets []uint32) []SampleLocation {
	locations := make([]SampleLocation, 0, len(sizes))
	sampleIdx := 0
	for chunkIdx, chunkSampleCount := range plan {
		if chunkIdx >= len(offsets) {
			break
		}
		pos := int64(offsets[chunkIdx])
		for i := 0; i < int(chunkSampleCount) && sampleIdx < len(sizes); i++ {
			size := sizes[sampleIdx]
			locations = append(locations, SampleLocation{Offset: pos, Size: size})
			pos += int64(size)
			sampleIdx++
		}
	}
	return locations
}

// ParseSTCO decodes a raw stco (32-bit) FullBox payload into chunk offsets.
func ParseSTCO(payload []byte) ([]uint32, error) {
	if len(payload) < 8 {
		return nil, errShortPayload("stco", len(payload), 8)
	}
	count := be32(payload[4:8])
	need := 8 + int(count)*4
	if len(payload) < need {
		return nil, errShortPayload("stco", len(payload), need)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		base := 8 + i*4
		offsets[i] = be32(payload[base : base+4])
	}
	return offsets, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func errShortPayload(box string, got, want int) error {
	return &shortPayloadError{box: box, got: got, want: want}
}

type shortPayloadError struct {
	box      string
	got, want int
}

func (e *shortPayloadError) Error() string {
	return e.box + " payload too short: have " + strconv.Itoa(e.got) + " bytes, need at least " + strconv.Itoa(e.want)
}

// buffer is a minimal big-endian byte accumulator used by the table
// builders above; box.Box payloads are plain []byte, so there is no
// need for the full binary.SafeWriter machinery here.
type buffer struct {
	b []byte
}

func (w *buffer) header(version uint8, flags uint32) {
	w.b = append(w.b, box.FullBoxHeader(version, flags)...)
}

func (w *buffer) u32(v uint32) {
	w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *buffer) u16(v uint16) {
	w.b = append(w.b, byte(v>>8), byte(v))
}

func (w *buffer) u8(v uint8) {
	w.b = append(w.b, v)
}

func (w *buffer) raw(p []byte) {
	w.b = append(w.b, p...)
}

func (w *buffer) bytes() []byte {
	return w.b
}

// errShortSTCOPayload is split out so PatchSTCO's error path reads as
// one line at the call site.
func errShortSTCOPayload(got, want int) error {
	return &stcoPayloadError{got: got, want: want}
}

type stcoPayloadError struct {
	got, want int
}

func (e *stcoPayloadError) Error() string {
	return "stco payload too short to patch: have " + strconv.Itoa(e.got) + " bytes, need " + strconv.Itoa(e.want)
}
