package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// BuildSmhd builds the sound media header: balance 0, reserved.
// Grounded on original_source's build_smhd (smhd_builder.cpp).
func BuildSmhd() *box.Box {
	p := &buffer{}
	p.header(0, 0)
	p.u16(0) // balance
	p.u16(0) // reserved
	return box.NewWithPayload("smhd", p.bytes())
}

// BuildNmhd builds the null media header used by the text chapter
// tracks: just a FullBox, no further fields. Grounded on
// original_source's build_nmhd (nmhd_builder.cpp).
func BuildNmhd() *box.Box {
	p := &buffer{}
	p.header(0, 0)
	return box.NewWithPayload("nmhd", p.bytes())
}

// BuildVmhd builds the video media header used by the image chapter
// track. flags MUST be 1: Apple requires it. Grounded on
// original_source's build_vmhd (vmhd_builder.cpp).
func BuildVmhd() *box.Box {
	p := &buffer{}
	p.header(0, 1)
	p.u16(0) // graphicsmode
	p.u16(0) // opcolor red
	p.u16(0) // opcolor green
	p.u16(0) // opcolor blue
	return box.NewWithPayload("vmhd", p.bytes())
}

// BuildDinf builds the self-contained data information box: one dref
// entry, a "url " box whose payload is only its FullBox header with
// flags=1 (no location string). Grounded on
// original_source's build_dinf (dinf_builder.cpp).
func BuildDinf() *box.Box {
	urlFlags := &buffer{}
	urlFlags.header(0, 1)
	url := box.NewWithPayload("url ", urlFlags.bytes())

	drefHeader := &buffer{}
	drefHeader.header(0, 0)
	drefHeader.u32(1) // entry_count
	dref := box.NewWithPayload("dref", drefHeader.bytes())
	dref.Add(url)

	dinf := box.New("dinf")
	dinf.Add(dref)
	return dinf
}
