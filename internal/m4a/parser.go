package m4a

import (
	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/stbl"
	"github.com/chapterforge/chapterforge/internal/types"
)

// Parse walks ftyp/moov/udta/meta/trak/mdia/minf/stbl structurally and
// returns a ParsedMp4. If structured parsing fails to populate at
// least one usable stsd/stts/stsc/stsz/stco set, it falls back to a
// flat signature scan over the whole file (UsedFallbackStbl=true).
//
// Grounded on parser.go's sequential findAtom descent
// through moov->udta->meta->ilst) generalized to capture every trak's
// full stbl rather than only enough fields for a human-readable
// summary, since a mux needs to reuse these payloads verbatim.
func Parse(sr *binary.SafeReader, size int64) (*ParsedMp4, error) {
	parsed, err := parseStructured(sr, size)
	if err == nil && hasUsableStbl(parsed) {
		return parsed, nil
	}

	fallback, fbErr := parseFlatScan(sr, size)
	if fbErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fbErr
	}
	fallback.UsedFallbackStbl = true
	return fallback, nil
}

func hasUsableStbl(p *ParsedMp4) bool {
	if p == nil {
		return false
	}
	for _, t := range p.Tracks {
		if len(t.Stsd) > 0 && len(t.Stts) > 0 && len(t.Stsc) > 0 && len(t.Stsz) > 0 && len(t.Stco) > 0 {
			return true
		}
	}
	return len(p.Stsd) > 0 && len(p.Stts) > 0 && len(p.Stsc) > 0 && len(p.Stsz) > 0 && len(p.Stco) > 0
}

func parseStructured(sr *binary.SafeReader, size int64) (*ParsedMp4, error) {
	moov, err := findAtom(sr, 0, size, "moov")
	if err != nil {
		return nil, err
	}

	result := &ParsedMp4{}

	if mvhd, err := findAtom(sr, moov.dataOffset(), moov.dataEnd(), "mvhd"); err == nil {
		timescale, duration, _ := parseMvhd(sr, mvhd)
		result.AudioTimescale = timescale
		result.AudioDuration = duration
	}

	if udta, err := findAtom(sr, moov.dataOffset(), moov.dataEnd(), "udta"); err == nil {
		if meta, err := findAtom(sr, udta.dataOffset(), udta.dataEnd(), "meta"); err == nil {
			captureMeta(sr, meta, result)
		}
	}
	if result.MetaPayload == nil {
		if meta, err := findAtom(sr, moov.dataOffset(), moov.dataEnd(), "meta"); err == nil {
			captureMeta(sr, meta, result)
		}
	}

	traks, err := findAllAtoms(sr, moov.dataOffset(), moov.dataEnd(), "trak")
	if err != nil && len(traks) == 0 {
		return nil, err
	}

	for _, trak := range traks {
		track, err := parseTrak(sr, trak)
		if err != nil {
			continue // partial tracks are skipped, per parse failure semantics
		}
		result.Tracks = append(result.Tracks, *track)
	}

	if audio := result.SelectAudioTrack(); audio != nil {
		result.Stsd, result.Stts = audio.Stsd, audio.Stts
		result.Stsc, result.Stsz, result.Stco = audio.Stsc, audio.Stsz, audio.Stco
		if result.AudioTimescale == 0 {
			result.AudioTimescale = audio.Timescale
		}
		if result.AudioDuration == 0 {
			result.AudioDuration = audio.Duration
		}
	}

	return result, nil
}

// captureMeta records a meta box's raw payload (including its FullBox
// header) and, separately, its ilst child's raw payload.
func captureMeta(sr *binary.SafeReader, meta *atom, result *ParsedMp4) {
	payload, err := readPayload(sr, meta)
	if err != nil {
		return
	}
	result.MetaPayload = payload

	// meta carries a 4-byte version+flags prefix before its children.
	ilst, err := findAtom(sr, meta.dataOffset()+4, meta.dataEnd(), "ilst")
	if err != nil {
		return
	}
	ilstPayload, err := readPayload(sr, ilst)
	if err != nil {
		return
	}
	result.IlstPayload = ilstPayload
}

// parseTrak extracts one track's handler info, timing, and stbl.
func parseTrak(sr *binary.SafeReader, trak *atom) (*TrackParseResult, error) {
	track := &TrackParseResult{}

	if tkhd, err := findAtom(sr, trak.dataOffset(), trak.dataEnd(), "tkhd"); err == nil {
		id, flags, _ := parseTkhd(sr, tkhd)
		track.TrackID = id
		track.TkhdFlags = flags
	}

	mdia, err := findAtom(sr, trak.dataOffset(), trak.dataEnd(), "mdia")
	if err != nil {
		return nil, err
	}

	if mdhd, err := findAtom(sr, mdia.dataOffset(), mdia.dataEnd(), "mdhd"); err == nil {
		timescale, duration, lang, _ := parseMdhd(sr, mdhd)
		track.Timescale = timescale
		track.Duration = duration
		track.Language = lang
	}

	if hdlr, err := findAtom(sr, mdia.dataOffset(), mdia.dataEnd(), "hdlr"); err == nil {
		handlerType, handlerName, _ := parseHdlr(sr, hdlr)
		track.HandlerType = handlerType
		track.HandlerName = handlerName
	}

	minf, err := findAtom(sr, mdia.dataOffset(), mdia.dataEnd(), "minf")
	if err != nil {
		return nil, err
	}
	stblAtom, err := findAtom(sr, minf.dataOffset(), minf.dataEnd(), "stbl")
	if err != nil {
		return nil, err
	}

	if err := captureStbl(sr, stblAtom, track); err != nil {
		return nil, err
	}

	return track, nil
}

// captureStbl reads the raw FullBox payloads of stsd/stts/stsc/stsz/
// stco within one stbl. A 64-bit co64 table is not read, so a track
// that has only co64 is reported as incomplete.
func captureStbl(sr *binary.SafeReader, stblAtom *atom, track *TrackParseResult) error {
	start, end := stblAtom.dataOffset(), stblAtom.dataEnd()

	if a, err := findAtom(sr, start, end, "stsd"); err == nil {
		track.Stsd, _ = readRawBoxPayload(sr, a)
	}
	if a, err := findAtom(sr, start, end, "stts"); err == nil {
		track.Stts, _ = readRawBoxPayload(sr, a)
	}
	if a, err := findAtom(sr, start, end, "stsc"); err == nil {
		track.Stsc, _ = readRawBoxPayload(sr, a)
	}
	if a, err := findAtom(sr, start, end, "stsz"); err == nil {
		track.Stsz, _ = readRawBoxPayload(sr, a)
		if sizes, err := stbl.ParseSTSZ(track.Stsz); err == nil {
			track.SampleCount = len(sizes)
		}
	}
	if a, err := findAtom(sr, start, end, "stco"); err == nil {
		track.Stco, _ = readRawBoxPayload(sr, a)
	}

	if len(track.Stsd) == 0 || len(track.Stts) == 0 || len(track.Stsc) == 0 ||
		len(track.Stsz) == 0 || len(track.Stco) == 0 {
		return &types.ReadIncompleteError{Path: sr.Path(), Reason: "incomplete stbl for track"}
	}
	return nil
}
