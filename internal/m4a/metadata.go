package m4a

import "strings"

// Metadata is the top-level iTunes-style tag set recovered from an
// ilst payload.
type Metadata struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Year    string
	Comment string
	Cover   []byte
}

// DecodeIlst walks an ilst payload's top-level entries (each a tag
// atom wrapping one "data" child) and maps recognized FourCC keys into
// a Metadata value. Grounded on extractIlstMetadata/
// mapTagToField (internal/m4a/metadata.go), generalized to decode
// directly from an in-memory payload slice (this package always has
// the ilst payload fully buffered already) rather than via SafeReader
// offsets, and to recover the binary "covr" cover-art tag.
func DecodeIlst(ilstPayload []byte) Metadata {
	var meta Metadata
	pos := 0
	for pos+8 <= len(ilstPayload) {
		size := int(be32(ilstPayload[pos : pos+4]))
		if size < 8 || pos+size > len(ilstPayload) {
			break
		}
		tag := string(ilstPayload[pos+4 : pos+8])
		body := ilstPayload[pos+8 : pos+size]

		switch tag {
		case "\xA9nam":
			meta.Title = decodeTextData(body)
		case "\xA9ART":
			meta.Artist = decodeTextData(body)
		case "\xA9alb":
			meta.Album = decodeTextData(body)
		case "\xA9gen":
			meta.Genre = decodeTextData(body)
		case "\xA9day":
			meta.Year = decodeTextData(body)
		case "\xA9cmt":
			meta.Comment = decodeTextData(body)
		case "covr":
			meta.Cover = decodeBinaryData(body)
		}

		pos += size
	}
	return meta
}

// decodeTextData finds a tag's "data" child and returns its value as
// trimmed UTF-8 text.
func decodeTextData(tagBody []byte) string {
	data := findDataBox(tagBody)
	if len(data) <= 8 {
		return ""
	}
	value := string(data[8:])
	return strings.TrimRight(strings.TrimSpace(value), "\x00")
}

// decodeBinaryData finds a tag's "data" child and returns its raw
// value bytes (used for covr, which is binary JPEG/PNG data).
func decodeBinaryData(tagBody []byte) []byte {
	data := findDataBox(tagBody)
	if len(data) <= 8 {
		return nil
	}
	out := make([]byte, len(data)-8)
	copy(out, data[8:])
	return out
}

// findDataBox returns a tag's data child's full payload (including its
// 8-byte version/flags/reserved prefix).
func findDataBox(tagBody []byte) []byte {
	pos := 0
	for pos+8 <= len(tagBody) {
		size := int(be32(tagBody[pos : pos+4]))
		if size < 8 || pos+size > len(tagBody) {
			return nil
		}
		if string(tagBody[pos+4:pos+8]) == "data" {
			return tagBody[pos+8 : pos+size]
		}
		pos += size
	}
	return nil
}
