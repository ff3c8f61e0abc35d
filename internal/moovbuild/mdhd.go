package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// Language codes are hardcoded: "und" for audio, "eng" for the
// text and image chapter tracks.
const (
	LanguageUndetermined uint16 = 0x55C4
	LanguageEnglish      uint16 = 0x15C7
)

// BuildMdhd builds a version-0 media header. Grounded on
// original_source's build_mdhd (mdhd_builder.cpp).
func BuildMdhd(timescale uint32, durationTS uint64, language uint16) *box.Box {
	p := &buffer{}
	p.header(0, 0)
	p.zero(8) // creation_time + modification_time
	p.u32(timescale)
	p.u32(uint32(durationTS))
	p.u16(language)
	p.u16(0) // pre_defined
	return box.NewWithPayload("mdhd", p.bytes())
}
