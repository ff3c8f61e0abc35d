// Package aacsrc recovers AAC access units and their decoder
// configuration from an input audio source, either by walking an
// existing MP4 audio track's sample tables (stsc/stco/stsz) or by
// framing a raw ADTS bitstream.
//
// Grounded on the ESDS descriptor walk (internal/m4a/codecs.go,
// parseESDescriptors), extended here to recover the full
// AudioSpecificConfig (audio object type, sampling frequency index,
// channel configuration) rather than just a profile name, since the mux
// needs those bits to re-synthesize an esds when it cannot reuse the
// source stsd verbatim.
package aacsrc

import (
	"fmt"

	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/stbl"
	"github.com/chapterforge/chapterforge/internal/types"
)

// Result is the recovered AAC material for one audio source, ready to
// feed a mux: either the source's sample table payloads verbatim
// (MP4Sourced), or just the decoder config recovered from the first
// ADTS frame.
type Result struct {
	Frames [][]byte

	AudioObjectType uint8
	SamplingIndex   uint8
	ChannelConfig   uint8

	// Timescale is the audio track's Hz rate: the source mdhd timescale
	// when MP4Sourced, or the rate the sampling index encodes otherwise.
	Timescale uint32

	StsdPayload []byte
	SttsPayload []byte
	StscPayload []byte
	StszPayload []byte
	StcoPayload []byte
}

// MP4Sourced reports whether Result carries reusable stbl payloads
// from an MP4-container source.
func (r *Result) MP4Sourced() bool {
	return len(r.StsdPayload) > 0
}

// SampleCount returns the number of AAC access units recovered.
func (r *Result) SampleCount() int {
	return len(r.Frames)
}

// ADTS frame header field layout (ISO/IEC 13818-7 Annex B).
const (
	adtsMinHeaderLen    = 7
	adtsWithCRCHeaderLen = 9
)

// ExtractFromADTS frames a raw ADTS AAC bitstream into access units,
// stripping each frame's header and decoding the object
// type/sampling-index/channel-config from the first frame.
func ExtractFromADTS(data []byte) (*Result, error) {
	pos := 0
	result := &Result{}

	for pos+adtsMinHeaderLen <= len(data) {
		if data[pos] != 0xFF || data[pos+1]&0xF0 != 0xF0 {
			return nil, &types.InvalidInputError{Reason: fmt.Sprintf("ADTS sync word not found at offset %d", pos)}
		}

		protectionAbsent := data[pos+1]&0x01 != 0
		aot := (data[pos+2]>>6)&0x03 + 1
		samplingIndex := (data[pos+2] >> 2) & 0x0F
		channelConfig := (data[pos+2]&0x01)<<2 | (data[pos+3] >> 6)

		frameLen := int(data[pos+3]&0x03)<<11 | int(data[pos+4])<<3 | int(data[pos+5]>>5)

		headerLen := adtsMinHeaderLen
		if !protectionAbsent {
			headerLen = adtsWithCRCHeaderLen
		}

		if frameLen < headerLen || pos+frameLen > len(data) {
			return nil, &types.InvalidInputError{Reason: fmt.Sprintf("ADTS frame length out of bounds at offset %d", pos)}
		}

		if len(result.Frames) == 0 {
			result.AudioObjectType = aot
			result.SamplingIndex = samplingIndex
			result.ChannelConfig = channelConfig
			result.Timescale = SampleRateForIndex(samplingIndex)
		}

		frame := make([]byte, frameLen-headerLen)
		copy(frame, data[pos+headerLen:pos+frameLen])
		result.Frames = append(result.Frames, frame)

		pos += frameLen
	}

	if len(result.Frames) == 0 {
		return nil, &types.InvalidInputError{Reason: "no ADTS frames found"}
	}
	return result, nil
}

// MP4Track carries the raw stbl payloads a source MP4's audio track
// was parsed into, plus the reader it can still be read back through.
type MP4Track struct {
	Reader    *binary.SafeReader
	Timescale uint32
	Stsd      []byte
	Stts      []byte
	Stsc      []byte
	Stsz      []byte
	Stco      []byte
}

// ExtractFromMP4 reconstructs per-sample AAC frames from a source
// MP4's audio track by expanding its stsc/stco/stsz tables and reading
// each chunk at its stco offset, then decodes the audio object
// type/sampling index/channel config from the track's esds.
func ExtractFromMP4(track MP4Track) (*Result, error) {
	sizes, err := stbl.ParseSTSZ(track.Stsz)
	if err != nil {
		return nil, err
	}
	scEntries, err := stbl.ParseSTSC(track.Stsc)
	if err != nil {
		return nil, err
	}
	offsets, err := stbl.ParseSTCO(track.Stco)
	if err != nil {
		return nil, err
	}

	plan := stbl.ChunkPlanFromSTSC(scEntries, len(sizes))

	frames := make([][]byte, 0, len(sizes))
	sampleIdx := 0
	for chunkIdx, chunkSampleCount := range plan {
		if chunkIdx >= len(offsets) {
			break
		}
		chunkOffset := int64(offsets[chunkIdx])

		var chunkLen int64
		for i := 0; i < int(chunkSampleCount) && sampleIdx+i < len(sizes); i++ {
			chunkLen += int64(sizes[sampleIdx+i])
		}

		buf := make([]byte, chunkLen)
		if err := track.Reader.ReadAt(buf, chunkOffset, "aac chunk"); err != nil {
			return nil, err
		}

		off := int64(0)
		for i := 0; i < int(chunkSampleCount) && sampleIdx < len(sizes); i++ {
			size := int64(sizes[sampleIdx])
			frames = append(frames, buf[off:off+size])
			off += size
			sampleIdx++
		}
	}

	aot, sampIdx, chanCfg := decodeESDS(track.Stsd)

	return &Result{
		Frames:          frames,
		AudioObjectType: aot,
		SamplingIndex:   sampIdx,
		ChannelConfig:   chanCfg,
		Timescale:       track.Timescale,
		StsdPayload:     track.Stsd,
		SttsPayload:     track.Stts,
		StscPayload:     track.Stsc,
		StszPayload:     track.Stsz,
		StcoPayload:     track.Stco,
	}, nil
}

// decodeESDS walks an stsd payload for an mp4a sample entry's esds box
// and decodes the AudioSpecificConfig it carries. Returns zeros if no
// decodable esds is present; callers fall back to the verbatim stsd
// payload in that case, so the zeros are never serialized.
func decodeESDS(stsdPayload []byte) (aot, samplingIndex, channelConfig uint8) {
	idx := indexOf(stsdPayload, []byte("esds"))
	if idx < 0 || idx+4 > len(stsdPayload) {
		return 0, 0, 0
	}
	// esds box: [size(4)][type(4)="esds"][version+flags(4)][ES_Descriptor...]
	body := stsdPayload[idx+4:]
	if len(body) < 4 {
		return 0, 0, 0
	}
	return parseAudioSpecificConfig(parseESDescriptorChain(body[4:]))
}

// parseESDescriptorChain walks ES_Descriptor(0x03) -> DecoderConfigDescriptor(0x04)
// -> DecoderSpecificInfo(0x05) and returns the raw AudioSpecificConfig bytes.
func parseESDescriptorChain(data []byte) []byte {
	pos := 0
	readSize := func() int {
		size := 0
		for i := 0; i < 4 && pos < len(data); i++ {
			b := data[pos]
			pos++
			size = size<<7 | int(b&0x7F)
			if b&0x80 == 0 {
				break
			}
		}
		return size
	}

	for pos < len(data) {
		tag := data[pos]
		pos++
		size := readSize()
		if size <= 0 || pos+size > len(data) {
			return nil
		}
		switch tag {
		case 0x03: // ES_Descriptor: skip ES_ID(2) + flags(1), recurse into the rest
			if pos+3 > len(data) {
				return nil
			}
			inner := data[pos+3 : pos+size]
			return parseESDescriptorChain(inner)
		case 0x04: // DecoderConfigDescriptor: skip objectTypeIndication(1)+streamType/upStream/reserved(1)+bufferSizeDB(3)+maxBitrate(4)+avgBitrate(4), recurse
			if size < 13 {
				return nil
			}
			inner := data[pos+13 : pos+size]
			return parseESDescriptorChain(inner)
		case 0x05: // DecoderSpecificInfo: this is the AudioSpecificConfig payload
			return data[pos : pos+size]
		default:
			pos += size
		}
	}
	return nil
}

// parseAudioSpecificConfig decodes the leading 13 bits of an
// AudioSpecificConfig: 5-bit audio object type, 4-bit sampling
// frequency index, 4-bit channel configuration.
func parseAudioSpecificConfig(asc []byte) (aot, samplingIndex, channelConfig uint8) {
	if len(asc) < 2 {
		return 0, 0, 0
	}
	aot = asc[0] >> 3
	samplingIndex = (asc[0]&0x07)<<1 | asc[1]>>7
	channelConfig = (asc[1] >> 3) & 0x0F
	return aot, samplingIndex, channelConfig
}

// mpeg4SamplingFrequencies is the standard MPEG-4 sampling frequency
// index table (ISO/IEC 14496-3 Table 1.16); indices 13-15 are reserved.
var mpeg4SamplingFrequencies = [16]uint32{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000,
	7350, 0, 0, 0,
}

// SampleRateForIndex returns the Hz value a 4-bit sampling frequency
// index encodes, or 0 for a reserved/unknown index.
func SampleRateForIndex(idx uint8) uint32 {
	if idx >= uint8(len(mpeg4SamplingFrequencies)) {
		return 0
	}
	return mpeg4SamplingFrequencies[idx]
}

func indexOf(haystack, needle []byte) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
