package m4a

// TrackParseResult is everything recovered from one trak box that a
// mux or read-back call needs: its raw sample-table payloads (so they
// can be reused verbatim) plus the handler/timing metadata needed to
// classify and time it.
type TrackParseResult struct {
	TrackID     uint32
	TkhdFlags   uint32
	HandlerType string // FourCC: "soun", "text", "vide"
	HandlerName string
	Timescale   uint32
	Duration    uint64
	SampleCount int
	Language    string

	Stsd []byte
	Stts []byte
	Stsc []byte
	Stsz []byte
	Stco []byte
}

// ParsedMp4 is the result of parsing a source MP4/M4A container: the
// selected audio track's raw stbl payloads promoted to top level (for
// the common case a caller only wants the audio), plus every track
// found and the raw meta/ilst payloads.
type ParsedMp4 struct {
	AudioTimescale uint32
	AudioDuration  uint64

	Stsd []byte
	Stts []byte
	Stsc []byte
	Stsz []byte
	Stco []byte

	MetaPayload []byte
	IlstPayload []byte

	UsedFallbackStbl bool

	Tracks []TrackParseResult
}

// SelectAudioTrack returns the track most likely to be the audio
// track: among handler type "soun", the one with the largest sample
// count (spec's tie-break for multi-track sources). Returns nil if no
// "soun" track was found.
func (p *ParsedMp4) SelectAudioTrack() *TrackParseResult {
	var best *TrackParseResult
	for i := range p.Tracks {
		t := &p.Tracks[i]
		if t.HandlerType != "soun" {
			continue
		}
		if best == nil || t.SampleCount > best.SampleCount {
			best = t
		}
	}
	return best
}
