package stbl

import "github.com/chapterforge/chapterforge/internal/box"

// AudioSource is the input to BuildAudioStbl: either a verbatim set of
// sample-table payloads recovered from an MP4 source, or the bare
// per-sample sizes plus AAC decoder config needed to synthesize one.
type AudioSource struct {
	// Reusable payloads. When all five are non-empty, BuildAudioStbl
	// wraps them verbatim instead of synthesizing.
	StsdPayload []byte
	SttsPayload []byte
	StscPayload []byte
	StszPayload []byte
	StcoPayload []byte

	// Synthesis inputs, used only when the payloads above are absent.
	SampleSizes     []uint32
	AudioObjectType uint8
	SamplingIndex   uint8
	ChannelConfig   uint8
	ChunkPlan       ChunkPlan
}

// Reusable reports whether every verbatim payload is present.
func (a AudioSource) Reusable() bool {
	return len(a.StsdPayload) > 0 && len(a.SttsPayload) > 0 &&
		len(a.StscPayload) > 0 && len(a.StszPayload) > 0 && len(a.StcoPayload) > 0
}

// aacFrameDuration is the number of PCM samples in one AAC-LC access
// unit (1024), which is also the stts delta at the audio track's
// sample-rate timescale.
const aacFrameDuration = 1024

// BuildAudioStbl assembles the audio track's stbl: verbatim reuse of a
// source MP4's sample tables when available (Apple players have been
// observed to accept the original table more reliably than a
// resynthesized one), otherwise a synthesized stsd/stts/stsc/stsz/stco
// from the given AAC decoder config, sample sizes, and chunk plan.
func BuildAudioStbl(src AudioSource) *box.Box {
	stbl := box.New("stbl")

	if src.Reusable() {
		stbl.Add(
			box.NewWithPayload("stsd", src.StsdPayload),
			box.NewWithPayload("stts", src.SttsPayload),
			box.NewWithPayload("stsc", src.StscPayload),
			box.NewWithPayload("stsz", src.StszPayload),
			box.NewWithPayload("stco", src.StcoPayload),
		)
		return stbl
	}

	sttsEntries := []SttsEntry{{SampleCount: uint32(len(src.SampleSizes)), SampleDelta: aacFrameDuration}}
	stsc := CompressToSTSC(src.ChunkPlan)

	stbl.Add(
		buildMP4AStsd(src.AudioObjectType, src.SamplingIndex, src.ChannelConfig),
		BuildSTTS(sttsEntries),
		BuildSTSC(stsc),
		BuildSTSZ(src.SampleSizes),
		BuildSTCOPlaceholder(len(src.ChunkPlan)),
	)
	return stbl
}

// buildMP4AStsd builds an stsd containing one mp4a sample entry
// wrapping an esds descriptor carrying the given AudioSpecificConfig.
func buildMP4AStsd(aot, samplingIndex, channelConfig uint8) *box.Box {
	hdr := &buffer{}
	hdr.header(0, 0)
	hdr.u32(1) // entry_count

	stsd := box.NewWithPayload("stsd", hdr.bytes())
	stsd.Add(buildMP4ASampleEntry(aot, samplingIndex, channelConfig))
	return stsd
}

// buildMP4ASampleEntry builds the mp4a AudioSampleEntry box: its
// payload is the fixed sample-entry header (reserved/data-reference/
// channel/sample-size/sample-rate fields), and its one child is the
// esds descriptor carrying the AudioSpecificConfig.
func buildMP4ASampleEntry(aot, samplingIndex, channelConfig uint8) *box.Box {
	entry := &buffer{}
	entry.raw(make([]byte, 6)) // reserved (sample entry header)
	entry.u16(1)               // data_reference_index
	entry.u32(0)               // reserved
	entry.u32(0)               // reserved
	entry.u16(2)               // channelcount (stereo default; esds carries the true config)
	entry.u16(16)              // samplesize
	entry.u16(0)               // pre_defined
	entry.u16(0)               // reserved
	entry.u32(44100 << 16)     // samplerate, 16.16 fixed (nominal; player reads real rate from esds)

	mp4a := box.NewWithPayload("mp4a", entry.bytes())

	asc := buildAudioSpecificConfig(aot, samplingIndex, channelConfig)
	mp4a.Add(box.NewWithPayload("esds", buildESDSPayload(asc)))
	return mp4a
}

// buildAudioSpecificConfig packs the 13-bit MPEG-4 AudioSpecificConfig
// core (audio object type, sampling frequency index, channel
// configuration) into its 2-byte wire form, zero-padded to a byte
// boundary (GASpecificConfig is omitted; no player observed requires
// it for AAC-LC chapter audio).
func buildAudioSpecificConfig(aot, samplingIndex, channelConfig uint8) []byte {
	b0 := aot<<3 | samplingIndex>>1
	b1 := samplingIndex<<7 | channelConfig<<3
	return []byte{b0, b1}
}

// buildESDSPayload builds the ES_Descriptor chain an esds FullBox
// carries: ES_Descriptor(0x03) -> DecoderConfigDescriptor(0x04,
// objectTypeIndication=0x40 "MPEG-4 Audio", streamType=audio) ->
// DecoderSpecificInfo(0x05, AudioSpecificConfig) -> SLConfigDescriptor(0x06).
func buildESDSPayload(asc []byte) []byte {
	decSpecific := descriptor(0x05, asc)

	decConfig := &buffer{}
	decConfig.u8(0x40) // objectTypeIndication: MPEG-4 Audio
	decConfig.u8(0x15) // streamType=5 (audio) << 2 | upStream(0) | reserved(1)
	decConfig.raw([]byte{0, 0, 0}) // bufferSizeDB
	decConfig.u32(0)               // maxBitrate
	decConfig.u32(0)               // avgBitrate
	decConfig.raw(decSpecific)
	decConfigDesc := descriptor(0x04, decConfig.bytes())

	slConfig := descriptor(0x06, []byte{0x02}) // predefined=2 (MP4 file)

	es := &buffer{}
	es.u16(0) // ES_ID
	es.u8(0)  // flags
	es.raw(decConfigDesc)
	es.raw(slConfig)
	esDesc := descriptor(0x03, es.bytes())

	payload := &buffer{}
	payload.header(0, 0)
	payload.raw(esDesc)
	return payload.bytes()
}

// descriptor wraps body in an MPEG-4 descriptor tag + size-prefixed
// header. Sizes under 128 bytes (true for everything chapterforge
// writes) fit the single-byte size-field form.
func descriptor(tag byte, body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, tag, byte(len(body)))
	out = append(out, body...)
	return out
}
