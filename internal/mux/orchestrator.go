package mux

import (
	"fmt"
	"io"

	"github.com/chapterforge/chapterforge/internal/aacsrc"
	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/box"
	"github.com/chapterforge/chapterforge/internal/jpeginfo"
	"github.com/chapterforge/chapterforge/internal/logging"
	"github.com/chapterforge/chapterforge/internal/mdatio"
	"github.com/chapterforge/chapterforge/internal/moovbuild"
	"github.com/chapterforge/chapterforge/internal/stbl"
)

// audioChunkGroupSize is the chunk size used to synthesize an audio
// chunk plan when no source stsc table is available to derive one
// from. Grounded on original_source's build_audio_chunk_plan
// (mp4_muxer.cpp), which settled on a flat 21-sample chunk after
// experimenting with an irregular first-chunk size.
const audioChunkGroupSize = 21

// defaultAudioTimescale is the sample rate assumed when neither a
// source MP4 track nor a decoded ADTS header supplies one.
const defaultAudioTimescale = 44100

// Orchestrator drives the full write_mp4 pipeline: deriving chapter
// timings, building sample tables and tracks, composing moov, and
// writing the final container in fast-start or trailing-moov layout.
// It carries no state between calls to Write.
//
// Grounded on original_source's write_mp4 (mp4_muxer.cpp), reassembled
// here from moovbuild, mdatio, stbl, aacsrc, timing, and jpeginfo.
type Orchestrator struct{}

// NewOrchestrator returns a ready-to-use Orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Write executes the write_mp4 algorithm against in, streaming the
// authored container to w. w need not be seekable: every layout mode
// computes offsets up front and writes forward only.
func (o *Orchestrator) Write(w io.Writer, in WriteInput) error {
	if err := validateInput(in); err != nil {
		return err
	}

	if len(in.Titles) > 0 && in.Titles[0].StartMS != 0 {
		logging.Warnf("first chapter start_ms is %d, not 0", in.Titles[0].StartMS)
	}

	audioTimescale := in.Audio.Timescale
	if audioTimescale == 0 {
		audioTimescale = defaultAudioTimescale
	}
	audioSampleCount := in.Audio.SampleCount()
	audioDurationTS := uint64(audioSampleCount) * 1024
	audioDurationMS := int64((audioDurationTS*1000 + uint64(audioTimescale) - 1) / uint64(audioTimescale))

	width, height, err := validateImages(in.Images)
	if err != nil {
		return err
	}

	titleSamples := EncodeTextTrackSamples(in.Titles)
	titleDurationsMS := textTrackDurationsMS(in.Titles, audioDurationMS)
	titleChapterDurationsMS := chapterDurationsMS(textChapterStartMS(in.Titles), audioDurationMS)

	extraEncoded := make([][][]byte, len(in.ExtraTextTracks))
	extraDurationsMS := make([][]uint32, len(in.ExtraTextTracks))
	for i, t := range in.ExtraTextTracks {
		extraEncoded[i] = EncodeTextTrackSamples(t.Samples)
		extraDurationsMS[i] = textTrackDurationsMS(t.Samples, audioDurationMS)
	}

	hasImageTrack := len(in.Images) > 0
	imageData := make([][]byte, len(in.Images))
	imageStartMS := make([]int64, len(in.Images))
	for i, im := range in.Images {
		imageData[i] = im.Data
		imageStartMS[i] = im.StartMS
	}
	imageDurationsMS := chapterDurationsMS(imageStartMS, audioDurationMS)

	audioChunkPlan := deriveAudioChunkPlan(in.Audio, audioSampleCount)

	stblAudio := stbl.BuildAudioStbl(stbl.AudioSource{
		StsdPayload:     in.Audio.StsdPayload,
		SttsPayload:     in.Audio.SttsPayload,
		StscPayload:     in.Audio.StscPayload,
		StszPayload:     in.Audio.StszPayload,
		StcoPayload:     in.Audio.StcoPayload,
		SampleSizes:     sampleByteSizes(in.Audio.Frames),
		AudioObjectType: in.Audio.AudioObjectType,
		SamplingIndex:   in.Audio.SamplingIndex,
		ChannelConfig:   in.Audio.ChannelConfig,
		ChunkPlan:       audioChunkPlan,
	})
	stblTitle := stbl.BuildTextStbl(titleDurationsMS, sampleByteSizes(titleSamples))

	extraStbls := make([]*box.Box, len(extraEncoded))
	for i := range extraEncoded {
		extraStbls[i] = stbl.BuildTextStbl(extraDurationsMS[i], sampleByteSizes(extraEncoded[i]))
	}

	var stblImage *box.Box
	if hasImageTrack {
		stblImage = stbl.BuildImageStbl(width, height, imageDurationsMS, sampleByteSizes(imageData))
	}

	// Duration conversions: tkhd expresses every track's
	// duration in the movie timescale; mdhd keeps each track's own.
	tkhdAudioDuration := audioDurationTS * moovbuild.MovieTimescale / uint64(audioTimescale)

	textDurationTS := sumUint32(titleChapterDurationsMS)
	tkhdChapterDuration := textDurationTS * moovbuild.MovieTimescale / moovbuild.ChapterTimescale

	var imageDurationTS, tkhdImageDuration uint64
	if hasImageTrack {
		imageDurationTS = sumUint32(imageDurationsMS)
		tkhdImageDuration = imageDurationTS * moovbuild.MovieTimescale / moovbuild.ChapterTimescale
	}

	mvhdDuration := maxUint64(tkhdAudioDuration, tkhdChapterDuration)
	if hasImageTrack {
		mvhdDuration = maxUint64(mvhdDuration, tkhdImageDuration)
	}

	textTrackCount := 1 + len(in.ExtraTextTracks)
	imageTrackID := moovbuild.ImageTrackID(textTrackCount)

	// tref/chap references the title track and, if present, the image
	// track; a URL track is never referenced (keeps QuickTime happy).
	chapterRefs := []uint32{moovbuild.TrackIDFirstText}
	if hasImageTrack {
		chapterRefs = append(chapterRefs, imageTrackID)
	}

	trakAudio := moovbuild.BuildTrakAudio(audioDurationTS, tkhdAudioDuration, audioTimescale, stblAudio, chapterRefs)

	textTraks := make([]*box.Box, 0, textTrackCount)
	textTraks = append(textTraks, moovbuild.BuildTrakText(
		moovbuild.TrackIDFirstText, textDurationTS, tkhdChapterDuration, "Chapter Titles", true, stblTitle))
	for i, t := range in.ExtraTextTracks {
		trackID := uint32(moovbuild.TrackIDFirstText) + 1 + uint32(i)
		textTraks = append(textTraks, moovbuild.BuildTrakText(
			trackID, textDurationTS, tkhdChapterDuration, t.HandlerName, true, extraStbls[i]))
	}

	var trakImage *box.Box
	if hasImageTrack {
		trakImage = moovbuild.BuildTrakImage(imageTrackID, imageDurationTS, tkhdImageDuration, width, height, stblImage)
	}

	metaBox := buildMetaBox(in)
	chpl := moovbuild.BuildChpl(titleTexts(in.Titles), titleChapterDurationsMS)
	udta := moovbuild.BuildUdta(metaBox, chpl)

	moov := moovbuild.BuildMoov(moovbuild.MovieTimescale, mvhdDuration, trakAudio, textTraks, trakImage, udta)
	if err := moov.FixSizeRecursive(); err != nil {
		return err
	}

	ftyp := BuildFtyp()
	if err := ftyp.FixSizeRecursive(); err != nil {
		return err
	}

	audioTrack := mdatio.TrackSamples{Samples: in.Audio.Frames, Plan: audioChunkPlan}
	textTracks := make([]mdatio.TrackSamples, 0, textTrackCount)
	textTracks = append(textTracks, mdatio.TrackSamples{Samples: titleSamples, Plan: stbl.OneSamplePerChunk(len(titleSamples))})
	for _, samples := range extraEncoded {
		textTracks = append(textTracks, mdatio.TrackSamples{Samples: samples, Plan: stbl.OneSamplePerChunk(len(samples))})
	}
	var imageTrack mdatio.TrackSamples
	if hasImageTrack {
		imageTrack = mdatio.TrackSamples{Samples: imageData, Plan: stbl.OneSamplePerChunk(len(imageData))}
	}

	sw := binary.NewSafeWriter(w)
	if err := ftyp.Write(sw); err != nil {
		return wrapOutputError(err)
	}

	layout := "trailing-moov"
	if in.FastStart {
		layout = "fast-start"
		if err := o.writeFastStart(sw, ftyp, moov, audioTrack, textTracks, imageTrack); err != nil {
			return err
		}
	} else if err := o.writeTrailing(sw, moov, audioTrack, textTracks, imageTrack); err != nil {
		return err
	}

	trackCount := 1 + textTrackCount
	if hasImageTrack {
		trackCount++
	}
	logging.Infof("wrote container: %d track(s), %s layout, audio duration %dms", trackCount, layout, audioDurationMS)
	return nil
}

func (o *Orchestrator) writeFastStart(sw *binary.SafeWriter, ftyp, moov *box.Box, audio mdatio.TrackSamples, texts []mdatio.TrackSamples, image mdatio.TrackSamples) error {
	payloadStart := int64(ftyp.Size()) + int64(moov.Size()) + 8
	offs := mdatio.ComputeOffsets(payloadStart, audio, texts, image)
	if err := mdatio.PatchAllStco(moov, offs); err != nil {
		return err
	}
	if err := moov.Write(sw); err != nil {
		return wrapOutputError(err)
	}
	if _, err := mdatio.WriteMdat(sw, audio, texts, image); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) writeTrailing(sw *binary.SafeWriter, moov *box.Box, audio mdatio.TrackSamples, texts []mdatio.TrackSamples, image mdatio.TrackSamples) error {
	offs, err := mdatio.WriteMdat(sw, audio, texts, image)
	if err != nil {
		return err
	}
	if err := mdatio.PatchAllStco(moov, offs); err != nil {
		return err
	}
	if err := mdatio.WriteFreePadding(sw); err != nil {
		return wrapOutputError(err)
	}
	if err := moov.Write(sw); err != nil {
		return wrapOutputError(err)
	}
	return nil
}

// deriveAudioChunkPlan reuses the source's stsc table when the audio
// is MP4-sourced, else synthesizes a flat chunk plan. Grounded on
// original_source's derive_chunk_plan/build_audio_chunk_plan
// (mp4_muxer.cpp).
func deriveAudioChunkPlan(audio *aacsrc.Result, sampleCount int) stbl.ChunkPlan {
	if len(audio.StscPayload) > 0 {
		if entries, err := stbl.ParseSTSC(audio.StscPayload); err == nil {
			if plan := stbl.ChunkPlanFromSTSC(entries, sampleCount); len(plan) > 0 {
				return plan
			}
		}
	}
	return stbl.SynthesizeAudioChunkPlan(sampleCount, audioChunkGroupSize)
}

func buildMetaBox(in WriteInput) *box.Box {
	if len(in.IlstPayload) > 0 {
		return moovbuild.BuildMetaFromIlst(box.NewWithPayload("ilst", in.IlstPayload))
	}
	return moovbuild.BuildMeta(in.Metadata)
}

func titleTexts(samples []TextChapterSample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.Text
	}
	return out
}

func sumUint32(vals []uint32) uint64 {
	var total uint64
	for _, v := range vals {
		total += uint64(v)
	}
	return total
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func wrapOutputError(err error) error {
	return fmt.Errorf("writing container: %w", err)
}

// validateImages inspects every chapter image's JPEG markers and
// returns the image-track sample entry's dimensions, taken from the
// first image. It fails if the first image can't be parsed or isn't
// 4:2:0; later images that mismatch only warn, except a later image
// that isn't 4:2:0 at all, which also fails.
func validateImages(images []ImageChapterSample) (width, height int, err error) {
	width, height = stbl.FallbackImageDimensions()
	if len(images) == 0 {
		return width, height, nil
	}

	first := jpeginfo.Inspect(images[0].Data)
	if !first.Found || !first.IsYUV420 {
		return 0, 0, invalidImageError(0)
	}
	width, height = first.Width, first.Height

	for i := 1; i < len(images); i++ {
		info := jpeginfo.Inspect(images[i].Data)
		if !info.Found || !info.IsYUV420 {
			return 0, 0, invalidImageError(i)
		}
		if info.Width != width || info.Height != height {
			logging.Warnf("chapter image %d is %dx%d, track size is %dx%d", i, info.Width, info.Height, width, height)
		}
	}
	return width, height, nil
}
