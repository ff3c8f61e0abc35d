// Package jpeginfo scans a JPEG byte stream for its SOF (Start Of
// Frame) marker to recover width, height, and whether the image uses
// 4:2:0 chroma subsampling, without decoding any pixel data.
//
// Grounded on detectJPEGDimensions (a SOF0/1/2 marker
// scan over raw covr data); generalized here to walk every JPEG SOF
// marker variant and additionally inspect the per-component sampling
// factors to classify subsampling, since a mux has to refuse anything
// that isn't 4:2:0.
package jpeginfo

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerSOS    = 0xDA
)

// isSOF reports whether marker is one of the SOF0..SOF15 frame markers,
// excluding the DHT/JPG/DAC markers that share the 0xC4/0xC8/0xCC
// slots within that range.
func isSOF(marker byte) bool {
	switch marker {
	case 0xC0, 0xC1, 0xC2, 0xC3, 0xC5, 0xC6, 0xC7,
		0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF:
		return true
	default:
		return false
	}
}

// Info is the result of scanning a JPEG's SOF marker.
type Info struct {
	Width    int
	Height   int
	IsYUV420 bool
	Found    bool
}

// Inspect scans data for the first SOF marker and returns its
// dimensions and subsampling classification. It returns Found=false
// (and a zero Info otherwise) if data is not a JPEG or no SOF marker
// is found before SOS/EOI.
func Inspect(data []byte) Info {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return Info{}
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != markerPrefix {
			pos++
			continue
		}
		marker := data[pos+1]
		pos += 2

		if marker == markerPrefix {
			// Padding byte between markers.
			pos--
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}
		// Markers with no length-prefixed segment.
		if marker >= 0xD0 && marker <= 0xD9 {
			continue
		}

		if pos+2 > len(data) {
			break
		}
		segmentLength := int(data[pos])<<8 | int(data[pos+1])

		if isSOF(marker) {
			if segmentLength < 7 || pos+segmentLength > len(data) {
				return Info{}
			}
			return parseSOF(data[pos : pos+segmentLength])
		}

		pos += segmentLength
	}

	return Info{}
}

// parseSOF decodes a SOF segment body (segment, including its 2-byte
// length prefix) into width/height and a 4:2:0 classification.
func parseSOF(seg []byte) Info {
	// seg[0:2] = length, seg[2] = precision, seg[3:5] = height,
	// seg[5:7] = width, seg[7] = component count, then 3 bytes/component.
	height := int(seg[3])<<8 | int(seg[4])
	width := int(seg[5])<<8 | int(seg[6])

	info := Info{Width: width, Height: height, Found: true}

	if len(seg) < 8 {
		return info
	}
	numComponents := int(seg[7])
	if numComponents != 3 || len(seg) < 8+numComponents*3 {
		return info
	}

	// Each component: [id(1)][h/v sampling nibble(1)][quant table(1)].
	samp := func(i int) (h, v byte) {
		b := seg[8+i*3+1]
		return b >> 4, b & 0x0F
	}
	h1, v1 := samp(0)
	h2, v2 := samp(1)
	h3, v3 := samp(2)

	info.IsYUV420 = h1 == 2 && v1 == 2 && h2 == 1 && v2 == 1 && h3 == 1 && v3 == 1
	return info
}
