package mux

import "github.com/chapterforge/chapterforge/internal/box"

// BuildFtyp returns the fixed 36-byte ftyp box every authored container
// opens with: major brand "M4V ", minor version 1, compatible brands
// mp42/isom/M4A /M4V /dby1. Grounded on original_source's write_mp4,
// which writes this exact byte sequence as a literal rather than
// building it from a brand list.
func BuildFtyp() *box.Box {
	payload := []byte{
		'M', '4', 'V', ' ', // major_brand
		0x00, 0x00, 0x00, 0x01, // minor_version
		'm', 'p', '4', '2',
		'i', 's', 'o', 'm',
		'M', '4', 'A', ' ',
		'M', '4', 'V', ' ',
		'd', 'b', 'y', '1',
	}
	return box.NewWithPayload("ftyp", payload)
}
