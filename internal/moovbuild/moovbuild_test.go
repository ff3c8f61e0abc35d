package moovbuild

import (
	"testing"

	"github.com/chapterforge/chapterforge/internal/box"
	"github.com/chapterforge/chapterforge/internal/stbl"
)

func payloadOf(t *testing.T, b *box.Box) []byte {
	t.Helper()
	if err := b.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	return b.Payload
}

func TestBuildMvhd(t *testing.T) {
	mvhd := BuildMvhd(600, 5400)
	p := payloadOf(t, mvhd)
	if len(p) != 100 {
		t.Fatalf("mvhd payload len = %d, want 100", len(p))
	}
	timescale := be32(p[12:16])
	if timescale != 600 {
		t.Errorf("timescale = %d, want 600", timescale)
	}
	duration := be32(p[16:20])
	if duration != 5400 {
		t.Errorf("duration = %d, want 5400", duration)
	}
	nextID := be32(p[96:100])
	if nextID != nextTrackID {
		t.Errorf("next_track_ID = %d, want %d", nextID, nextTrackID)
	}
}

func TestBuildTkhdAudio_FlagsAndVolume(t *testing.T) {
	tkhd := BuildTkhdAudio(1, 1000)
	p := payloadOf(t, tkhd)
	flags := uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
	if flags != tkhdFlagsVisible {
		t.Errorf("flags = %#x, want %#x", flags, tkhdFlagsVisible)
	}
	trackID := be32(p[12:16])
	if trackID != 1 {
		t.Errorf("track_ID = %d, want 1", trackID)
	}
}

func TestBuildTkhdText_HiddenVsVisible(t *testing.T) {
	visible := BuildTkhdText(2, 500, true)
	hidden := BuildTkhdText(3, 500, false)

	vp := payloadOf(t, visible)
	hp := payloadOf(t, hidden)

	vFlags := uint32(vp[1])<<16 | uint32(vp[2])<<8 | uint32(vp[3])
	hFlags := uint32(hp[1])<<16 | uint32(hp[2])<<8 | uint32(hp[3])

	if vFlags != tkhdFlagsVisible {
		t.Errorf("visible flags = %#x, want %#x", vFlags, tkhdFlagsVisible)
	}
	if hFlags != tkhdFlagsHidden {
		t.Errorf("hidden flags = %#x, want %#x", hFlags, tkhdFlagsHidden)
	}
}

func TestBuildMdhd_LanguageCodes(t *testing.T) {
	audio := payloadOf(t, BuildMdhd(44100, 1000, LanguageUndetermined))
	text := payloadOf(t, BuildMdhd(1000, 1000, LanguageEnglish))

	audioLang := uint16(audio[20])<<8 | uint16(audio[21])
	textLang := uint16(text[20])<<8 | uint16(text[21])

	if audioLang != LanguageUndetermined {
		t.Errorf("audio language = %#x, want %#x", audioLang, LanguageUndetermined)
	}
	if textLang != LanguageEnglish {
		t.Errorf("text language = %#x, want %#x", textLang, LanguageEnglish)
	}
}

func TestBuildHdlr_Variants(t *testing.T) {
	sound := payloadOf(t, BuildHdlrSound())
	if got := string(sound[8:12]); got != "soun" {
		t.Errorf("sound handler_type = %q, want soun", got)
	}
	text := payloadOf(t, BuildHdlrText("My Chapters"))
	if got := string(text[8:12]); got != "text" {
		t.Errorf("text handler_type = %q, want text", got)
	}
	name := string(text[24 : len(text)-1])
	if name != "My Chapters" {
		t.Errorf("text handler name = %q, want %q", name, "My Chapters")
	}
	video := payloadOf(t, BuildHdlrVideo())
	if got := string(video[8:12]); got != "vide" {
		t.Errorf("video handler_type = %q, want vide", got)
	}
}

func TestBuildVmhd_FlagsMustBeOne(t *testing.T) {
	p := payloadOf(t, BuildVmhd())
	flags := uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
	if flags != 1 {
		t.Errorf("vmhd flags = %d, want 1", flags)
	}
}

func TestBuildDinf_SelfContainedURL(t *testing.T) {
	dinf := BuildDinf()
	if err := dinf.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	dref := dinf.FindFirst("dref")
	if dref == nil {
		t.Fatal("dinf has no dref child")
	}
	url := dref.FindFirst("url ")
	if url == nil {
		t.Fatal("dref has no url child")
	}
	if len(url.Payload) != 4 {
		t.Fatalf("url payload len = %d, want 4 (FullBox header only)", len(url.Payload))
	}
	if flags := uint32(url.Payload[1])<<16 | uint32(url.Payload[2])<<8 | uint32(url.Payload[3]); flags != 1 {
		t.Errorf("url flags = %d, want 1 (self-contained)", flags)
	}
}

func TestBuildChpl_AccumulatesStartTimes(t *testing.T) {
	titles := []string{"Intro", "Chapter Two", "Outro"}
	durations := []uint32{1000, 2000, 1500}
	chpl := BuildChpl(titles, durations)
	p := payloadOf(t, chpl)

	count := int(p[4])
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	pos := 5
	wantStart := uint64(0)
	for i, title := range titles {
		start := be64(p[pos : pos+8])
		if start != wantStart {
			t.Errorf("chapter %d start = %d, want %d", i, start, wantStart)
		}
		titleLen := int(p[pos+8])
		if titleLen != len(title) {
			t.Errorf("chapter %d title_len = %d, want %d", i, titleLen, len(title))
		}
		got := string(p[pos+9 : pos+9+titleLen])
		if got != title {
			t.Errorf("chapter %d title = %q, want %q", i, got, title)
		}
		pos += 9 + titleLen
		wantStart += uint64(durations[i])
	}
}

func TestBuildIlst_OnlyNonEmptyFields(t *testing.T) {
	m := MetadataSet{Title: "Test Album", Year: "2026"}
	ilst := BuildIlst(m)
	if err := ilst.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	if len(ilst.Children) != 2 {
		t.Fatalf("ilst children = %d, want 2", len(ilst.Children))
	}
	if ilst.FindFirst("\xA9nam") == nil {
		t.Error("missing nam tag")
	}
	if ilst.FindFirst("\xA9ART") != nil {
		t.Error("unexpected ART tag for empty artist")
	}
}

func TestBuildMeta_WrapsIlstWithInternalHdlr(t *testing.T) {
	meta := BuildMeta(MetadataSet{Title: "Hello"})
	if err := meta.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	if len(meta.Children) != 2 {
		t.Fatalf("meta children = %d, want 2 (hdlr, ilst)", len(meta.Children))
	}
	if meta.Children[0].TypeString() != "hdlr" {
		t.Errorf("first meta child = %q, want hdlr", meta.Children[0].TypeString())
	}
	if meta.Children[1].TypeString() != "ilst" {
		t.Errorf("second meta child = %q, want ilst", meta.Children[1].TypeString())
	}
	hdlrPayload := meta.Children[0].Payload
	if got := string(hdlrPayload[8:12]); got != "mdir" {
		t.Errorf("meta hdlr handler_type = %q, want mdir", got)
	}
}

func TestBuildTrakAudio_WithChapterRef(t *testing.T) {
	stblAudio := stbl.BuildAudioStbl(stbl.AudioSource{
		SamplingIndex:   4,
		ChannelConfig:   2,
		AudioObjectType: 2,
		SampleSizes:     []uint32{100, 100},
		ChunkPlan:       stbl.OneSamplePerChunk(2),
	})
	trak := BuildTrakAudio(2048, 1229, 44100, stblAudio, []uint32{2, 3})
	if err := trak.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	tref := trak.FindFirst("tref")
	if tref == nil {
		t.Fatal("expected tref child when chapter track IDs given")
	}
	chap := tref.FindFirst("chap")
	if chap == nil {
		t.Fatal("tref missing chap child")
	}
	if len(chap.Payload) != 8 {
		t.Fatalf("chap payload len = %d, want 8", len(chap.Payload))
	}
	if be32(chap.Payload[0:4]) != 2 || be32(chap.Payload[4:8]) != 3 {
		t.Errorf("chap payload = %v, want [2,3]", chap.Payload)
	}
}

func TestBuildTrakImage_HasEdts(t *testing.T) {
	stblImage := stbl.BuildImageStbl(1280, 720, []uint32{1000}, []uint32{500})
	trak := BuildTrakImage(4, 1000, 5000, 1280, 720, stblImage)
	if err := trak.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}
	edts := trak.FindFirst("edts")
	if edts == nil {
		t.Fatal("image track missing edts")
	}
	elst := edts.FindFirst("elst")
	if elst == nil {
		t.Fatal("edts missing elst")
	}
	if be32(elst.Payload[4:8]) != 1 {
		t.Errorf("elst entry_count = %d, want 1", be32(elst.Payload[4:8]))
	}
	if be32(elst.Payload[8:12]) != 5000 {
		t.Errorf("elst segment_duration = %d, want 5000", be32(elst.Payload[8:12]))
	}
}

func TestBuildMoov_AssemblesAllTracks(t *testing.T) {
	stblAudio := stbl.BuildAudioStbl(stbl.AudioSource{
		SamplingIndex:   4,
		ChannelConfig:   2,
		AudioObjectType: 2,
		SampleSizes:     []uint32{100},
		ChunkPlan:       stbl.OneSamplePerChunk(1),
	})
	trakAudio := BuildTrakAudio(1024, 600, 44100, stblAudio, nil)

	stblTitle := stbl.BuildTextStbl([]uint32{1000}, []uint32{10})
	trakTitle := BuildTrakText(TrackIDFirstText, 1000, 600, "Chapter Titles", true, stblTitle)

	udta := BuildUdta(BuildMeta(MetadataSet{Title: "Album"}), BuildChpl([]string{"Intro"}, []uint32{1000}))

	moov := BuildMoov(600, 5000, trakAudio, []*box.Box{trakTitle}, nil, udta)
	if err := moov.FixSizeRecursive(); err != nil {
		t.Fatalf("FixSizeRecursive: %v", err)
	}

	if moov.FindFirst("mvhd") == nil {
		t.Error("moov missing mvhd")
	}
	traks := moov.Find("trak")
	if len(traks) != 2 {
		t.Errorf("trak count = %d, want 2", len(traks))
	}
	if moov.FindFirst("udta") == nil {
		t.Error("moov missing udta")
	}
	if moov.FindFirst("chpl") == nil {
		t.Error("moov missing chpl")
	}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func be64(b []byte) uint64 {
	return uint64(be32(b[0:4]))<<32 | uint64(be32(b[4:8]))
}
