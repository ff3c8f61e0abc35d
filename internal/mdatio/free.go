package mdatio

import "github.com/chapterforge/chapterforge/internal/binary"

// freePaddingSize is the payload size of the free box written between
// mdat and moov in trailing-moov layout, matching the reference
// writer's padding.
const freePaddingSize = 1024

// WriteFreePadding writes a free box with 1024 zero bytes of payload,
// used as padding ahead of a trailing moov.
func WriteFreePadding(sw *binary.SafeWriter) error {
	if err := binary.Write(sw, uint32(8+freePaddingSize)); err != nil {
		return err
	}
	if err := sw.WriteString("free"); err != nil {
		return err
	}
	return sw.WriteZero(freePaddingSize)
}
