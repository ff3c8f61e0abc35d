package stbl

import "github.com/chapterforge/chapterforge/internal/box"

// EncodeTextSample serializes one tx3g chapter-text sample: a u16
// big-endian byte length followed by the UTF-8 text, with an optional
// href modifier box when href is non-empty.
func EncodeTextSample(text, href string) []byte {
	buf := &buffer{}
	buf.u16(uint16(len(text)))
	buf.raw([]byte(text))

	if href != "" {
		// href box: size(4) || 'href' || u16(0) || u16(0x000a) || u8(len) || url || pad(1).
		boxSize := 4 + 4 + 2 + 2 + 1 + len(href) + 1
		buf.u32(uint32(boxSize))
		buf.raw([]byte("href"))
		buf.u16(0)
		buf.u16(0x000a)
		buf.u8(uint8(len(href)))
		buf.raw([]byte(href))
		buf.u8(0)
	}
	return buf.bytes()
}

// BuildTextStsd builds the stsd for a tx3g text track: one tx3g sample
// entry in the exact byte layout Apple's own chapter tracks use
// (display flags 0, justification {0x01, 0xFF}, background
// {0x1f,0x1f,0x1f,0x00}, an identity default text box, a default style
// record with fontID=1/size=0x12/opaque black, and an ftab naming
// "Sans-Serif").
func BuildTextStsd() *box.Box {
	hdr := &buffer{}
	hdr.header(0, 0)
	hdr.u32(1) // entry_count

	stsd := box.NewWithPayload("stsd", hdr.bytes())
	stsd.Add(buildTx3gSampleEntry())
	return stsd
}

func buildTx3gSampleEntry() *box.Box {
	e := &buffer{}
	e.raw(make([]byte, 6)) // reserved
	e.u16(1)                // data_reference_index

	e.u32(0) // displayFlags
	e.u8(1)  // horizontal justification
	e.u8(0xFF) // vertical justification (as a signed byte, -1 = bottom)
	e.raw([]byte{0x1f, 0x1f, 0x1f, 0x00}) // background color RGBA

	// default text box: top, left, bottom, right (all zero = identity).
	e.u16(0)
	e.u16(0)
	e.u16(0)
	e.u16(0)

	// default style record: startChar(2), endChar(2), fontID(2),
	// face(1), size(1), color RGBA(4).
	e.u16(0)
	e.u16(0)
	e.u16(1)    // fontID
	e.u8(0)     // face
	e.u8(0x12)  // font size
	e.raw([]byte{0x00, 0x00, 0x00, 0xFF}) // opaque black

	ftab := buildFtab()
	e.raw(ftab)

	return box.NewWithPayload("tx3g", e.bytes())
}

// buildFtab builds the font table child of a tx3g sample entry: one
// entry naming "Sans-Serif" with font ID 1.
func buildFtab() []byte {
	name := "Sans-Serif"
	payload := &buffer{}
	payload.u16(1) // entry_count
	payload.u16(1) // fontID
	payload.u8(uint8(len(name)))
	payload.raw([]byte(name))

	size := 8 + len(payload.bytes())
	out := &buffer{}
	out.u32(uint32(size))
	out.raw([]byte("ftab"))
	out.raw(payload.bytes())
	return out.bytes()
}

// BuildTextStbl assembles a full text (tx3g) track stbl: one sample
// per chunk, durations from the timing helper, encoded sample sizes
// from encodedSizes.
func BuildTextStbl(durationsMS []uint32, encodedSizes []uint32) *box.Box {
	plan := OneSamplePerChunk(len(encodedSizes))

	stbl := box.New("stbl")
	stbl.Add(
		BuildTextStsd(),
		BuildSTTS(ExpandedSTTS(durationsMS)),
		BuildSTSC(CompressToSTSC(plan)),
		BuildSTSZ(encodedSizes),
		BuildSTCOPlaceholder(len(plan)),
	)
	return stbl
}
