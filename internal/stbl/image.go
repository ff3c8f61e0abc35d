package stbl

import "github.com/chapterforge/chapterforge/internal/box"

// fallbackImageWidth/Height is the size used when a chapter image
// fails JPEG inspection; it matches the Apple-authored reference files
// this package's sample entries are modeled on.
const (
	fallbackImageWidth  = 1280
	fallbackImageHeight = 720
)

// FallbackImageDimensions returns the default width/height used when a
// chapter image's JPEG dimensions can't be recovered.
func FallbackImageDimensions() (width, height int) {
	return fallbackImageWidth, fallbackImageHeight
}

// BuildImageStsd builds the stsd for the JPEG image track: one
// QuickTime-style still-image ('jpeg') sample entry at 72dpi, 24-bit
// depth, frame_count=1, compressorname="JPEG".
func BuildImageStsd(width, height int) *box.Box {
	hdr := &buffer{}
	hdr.header(0, 0)
	hdr.u32(1) // entry_count

	stsd := box.NewWithPayload("stsd", hdr.bytes())
	stsd.Add(buildJPEGSampleEntry(width, height))
	return stsd
}

func buildJPEGSampleEntry(width, height int) *box.Box {
	e := &buffer{}
	e.raw(make([]byte, 6)) // reserved
	e.u16(1)                // data_reference_index

	e.u16(0)             // version
	e.u16(0)             // revision level
	e.raw(make([]byte, 4)) // vendor
	e.u32(0)             // temporal quality
	e.u32(0)             // spatial quality
	e.u16(uint16(width))
	e.u16(uint16(height))
	e.u32(0x00480000) // horizontal resolution, 72dpi 16.16 fixed
	e.u32(0x00480000) // vertical resolution, 72dpi 16.16 fixed
	e.u32(0)          // data size
	e.u16(1)          // frame_count

	compressorName := "JPEG"
	nameField := make([]byte, 32)
	nameField[0] = byte(len(compressorName))
	copy(nameField[1:], compressorName)
	e.raw(nameField)

	e.u16(24)     // depth
	e.u16(0xFFFF) // color table ID: no color table / greyscale default

	return box.NewWithPayload("jpeg", e.bytes())
}

// BuildImageStbl assembles the chapter-image track's stbl: one sample
// per chunk, every sample a sync point, durations from the timing
// helper, per-sample JPEG byte sizes from encodedSizes.
func BuildImageStbl(width, height int, durationsMS []uint32, encodedSizes []uint32) *box.Box {
	plan := OneSamplePerChunk(len(encodedSizes))

	stbl := box.New("stbl")
	stbl.Add(
		BuildImageStsd(width, height),
		BuildSTTS(ExpandedSTTS(durationsMS)),
		BuildSTSS(len(encodedSizes)),
		BuildSTSC(CompressToSTSC(plan)),
		BuildSTSZ(encodedSizes),
		BuildSTCOPlaceholder(len(plan)),
	)
	return stbl
}
