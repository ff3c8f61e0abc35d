package m4a

import "github.com/chapterforge/chapterforge/internal/binary"

// parseMvhd reads the movie header's timescale and duration, handling
// both the 32-bit (version 0) and 64-bit (version 1) field widths.
// Grounded on parseMvhd (internal/m4a/technical.go).
func parseMvhd(sr *binary.SafeReader, a *atom) (timescale uint32, duration uint64, err error) {
	off := a.dataOffset()
	version, err := binary.Read[uint8](sr, off, "mvhd version")
	if err != nil {
		return 0, 0, err
	}
	off += 4 // version + flags

	if version == 1 {
		off += 16 // creation/modification time, 64-bit each
		timescale, err = binary.Read[uint32](sr, off, "mvhd timescale")
		if err != nil {
			return 0, 0, err
		}
		off += 4
		duration, err = binary.Read[uint64](sr, off, "mvhd duration")
		return timescale, duration, err
	}

	off += 8 // creation/modification time, 32-bit each
	timescale, err = binary.Read[uint32](sr, off, "mvhd timescale")
	if err != nil {
		return 0, 0, err
	}
	off += 4
	dur32, err := binary.Read[uint32](sr, off, "mvhd duration")
	return timescale, uint64(dur32), err
}

// parseTkhd reads the track header's track ID and flags. Flags are
// packed into the FullBox header's 3-byte flags field.
func parseTkhd(sr *binary.SafeReader, a *atom) (trackID uint32, flags uint32, err error) {
	off := a.dataOffset()
	version, err := binary.Read[uint8](sr, off, "tkhd version")
	if err != nil {
		return 0, 0, err
	}
	flags, err = binary.ReadU24(sr, off+1, "tkhd flags")
	if err != nil {
		return 0, 0, err
	}
	off += 4

	if version == 1 {
		off += 16 // creation/modification time, 64-bit each
	} else {
		off += 8 // creation/modification time, 32-bit each
	}
	trackID, err = binary.Read[uint32](sr, off, "tkhd track id")
	return trackID, flags, err
}

// parseMdhd reads the media header's timescale, duration, and
// ISO-639-2/T language code (packed 5 bits/char, offset from 0x60).
func parseMdhd(sr *binary.SafeReader, a *atom) (timescale uint32, duration uint64, language string, err error) {
	off := a.dataOffset()
	version, err := binary.Read[uint8](sr, off, "mdhd version")
	if err != nil {
		return 0, 0, "", err
	}
	off += 4

	var langOff int64
	if version == 1 {
		off += 16
		timescale, err = binary.Read[uint32](sr, off, "mdhd timescale")
		if err != nil {
			return 0, 0, "", err
		}
		off += 4
		duration, err = binary.Read[uint64](sr, off, "mdhd duration")
		if err != nil {
			return 0, 0, "", err
		}
		off += 8
		langOff = off
	} else {
		off += 8
		timescale, err = binary.Read[uint32](sr, off, "mdhd timescale")
		if err != nil {
			return 0, 0, "", err
		}
		off += 4
		dur32, err2 := binary.Read[uint32](sr, off, "mdhd duration")
		if err2 != nil {
			return 0, 0, "", err2
		}
		duration = uint64(dur32)
		off += 4
		langOff = off
	}

	langCode, err := binary.Read[uint16](sr, langOff, "mdhd language")
	if err != nil {
		return timescale, duration, "", nil
	}
	return timescale, duration, decodeLanguageCode(langCode), nil
}

// decodeLanguageCode unpacks the 3 5-bit characters ("a"=1..."z"=26)
// ISO-639-2/T packs into mdhd's language field.
func decodeLanguageCode(code uint16) string {
	c1 := byte((code>>10)&0x1F) + 0x60
	c2 := byte((code>>5)&0x1F) + 0x60
	c3 := byte(code&0x1F) + 0x60
	return string([]byte{c1, c2, c3})
}

// parseHdlr reads the handler type FourCC and the handler name string
// (Pascal-string form in some writers, NUL-terminated in others; both
// are handled).
func parseHdlr(sr *binary.SafeReader, a *atom) (handlerType, name string, err error) {
	off := a.dataOffset() + 4 // version + flags
	off += 4                  // pre_defined

	typeBytes := make([]byte, 4)
	if err := sr.ReadAt(typeBytes, off, "hdlr handler type"); err != nil {
		return "", "", err
	}
	off += 4 + 12 // handler type, then 3 reserved uint32s

	nameLen := int(a.dataEnd() - off)
	if nameLen <= 0 {
		return string(typeBytes), "", nil
	}
	if nameLen > 512 {
		nameLen = 512
	}
	buf := make([]byte, nameLen)
	if err := sr.ReadAt(buf, off, "hdlr handler name"); err != nil {
		return string(typeBytes), "", nil
	}

	name = decodeHdlrName(buf)
	return string(typeBytes), name, nil
}

// decodeHdlrName strips a leading Pascal-string length byte when
// present, and trims trailing NUL padding either way.
func decodeHdlrName(buf []byte) string {
	if len(buf) > 0 && int(buf[0]) == len(buf)-1 {
		buf = buf[1:]
	}
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end])
}
