package m4a

import (
	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/stbl"
	"github.com/chapterforge/chapterforge/internal/types"
)

// parseFlatScan recovers stsd/stts/stsc/stsz/stco/ilst by signature
// scan over the entire file, for inputs where the structured
// moov->trak->mdia->minf->stbl descent fails (truncated or
// non-standard box nesting). It reads the file into memory once and
// scans for each 4-byte type, capturing the smallest enclosing box
// found for each — this repo's equivalent of the reference parser's "return
// basic file info" degraded paths, generalized into an actual
// recovery pass since a mux cannot proceed with no sample table at all.
func parseFlatScan(sr *binary.SafeReader, size int64) (*ParsedMp4, error) {
	if size <= 0 {
		return nil, &types.InputError{Path: sr.Path(), Reason: "empty file"}
	}

	data := make([]byte, size)
	if err := sr.ReadAt(data, 0, "flat scan buffer"); err != nil {
		return nil, err
	}

	result := &ParsedMp4{}
	track := TrackParseResult{}

	for _, want := range []struct {
		typ string
		dst *[]byte
	}{
		{"stsd", &track.Stsd},
		{"stts", &track.Stts},
		{"stsc", &track.Stsc},
		{"stsz", &track.Stsz},
		{"stco", &track.Stco},
		{"ilst", &result.IlstPayload},
	} {
		if payload := scanForBox(data, want.typ); payload != nil {
			*want.dst = payload
		}
	}

	if sizes, err := stbl.ParseSTSZ(track.Stsz); err == nil {
		track.SampleCount = len(sizes)
	}

	if len(track.Stsd) == 0 || len(track.Stts) == 0 || len(track.Stsc) == 0 ||
		len(track.Stsz) == 0 || len(track.Stco) == 0 {
		return nil, &types.ReadIncompleteError{Path: sr.Path(), Reason: "flat scan could not recover a usable sample table"}
	}

	track.HandlerType = "soun"
	result.Tracks = []TrackParseResult{track}
	result.Stsd, result.Stts = track.Stsd, track.Stts
	result.Stsc, result.Stsz, result.Stco = track.Stsc, track.Stsz, track.Stco

	return result, nil
}

// scanForBox finds the first occurrence of typ's FourCC at a
// plausible box-header position (4 bytes before the match, holding a
// size that places the match within bounds) and returns that box's
// full payload (including its FullBox version+flags prefix, since
// these are reused verbatim).
func scanForBox(data []byte, typ string) []byte {
	needle := []byte(typ)
	for i := 4; i+4 <= len(data); i++ {
		if !matchAt(data, i, needle) {
			continue
		}
		sizeOff := i - 4
		size := be32(data[sizeOff : sizeOff+4])
		if size < 8 || sizeOff+int(size) > len(data) {
			continue
		}
		return data[i+4 : sizeOff+int(size)]
	}
	return nil
}

func matchAt(data []byte, pos int, needle []byte) bool {
	if pos+len(needle) > len(data) {
		return false
	}
	for i, b := range needle {
		if data[pos+i] != b {
			return false
		}
	}
	return true
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
