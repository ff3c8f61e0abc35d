package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// MovieTimescale is the fixed mvhd timescale every authored container
// uses; per-track durations are converted into this timescale
// when composing tkhd.
const MovieTimescale = 600

// nextTrackID is hardcoded to 5, matching the reference writer: audio
// (1), up to two text tracks (2, 3), and an image track (4) are the
// most ChapterForge ever authors in one file.
const nextTrackID = 5

// BuildMvhd builds the movie header: rate 1.0, volume 1.0, identity
// matrix, next_track_ID fixed at 5. Grounded on original_source's
// build_mvhd (mvhd_builder.cpp).
func BuildMvhd(timescale uint32, durationTS uint64) *box.Box {
	p := &buffer{}
	p.header(0, 0)
	p.zero(8) // creation_time + modification_time
	p.u32(timescale)
	p.u32(uint32(durationTS))
	p.u32(0x00010000) // rate = 1.0
	p.u16(0x0100)     // volume = 1.0
	p.zero(2)         // reserved
	p.zero(8)         // reserved
	p.raw(identityMatrix())
	p.zero(24) // pre_defined
	p.u32(nextTrackID)
	return box.NewWithPayload("mvhd", p.bytes())
}

// identityMatrix returns the 36-byte QuickTime unity transform matrix
// used by mvhd and tkhd.
func identityMatrix() []byte {
	m := &buffer{}
	m.u32(0x00010000) // a
	m.u32(0)          // b
	m.u32(0)          // u
	m.u32(0)          // c
	m.u32(0x00010000) // d
	m.u32(0)          // v
	m.u32(0)          // x
	m.u32(0)          // y
	m.u32(0x40000000) // w
	return m.bytes()
}
