package mdatio

import (
	"bytes"
	"testing"

	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/box"
	"github.com/chapterforge/chapterforge/internal/stbl"
)

func TestComputeOffsets_OrderAndAlignment(t *testing.T) {
	audio := TrackSamples{
		Samples: [][]byte{{1, 2}, {3, 4}, {5, 6}},
		Plan:    stbl.ChunkPlan{2, 1},
	}
	text := TrackSamples{
		Samples: [][]byte{{0xA, 0xB}},
		Plan:    stbl.OneSamplePerChunk(1),
	}
	image := TrackSamples{
		Samples: [][]byte{{0xFF, 0xFF, 0xFF}},
		Plan:    stbl.OneSamplePerChunk(1),
	}

	offs := ComputeOffsets(1000, audio, []TrackSamples{text}, image)

	if len(offs.Audio) != 2 {
		t.Fatalf("audio chunk count = %d, want 2", len(offs.Audio))
	}
	if offs.Audio[0] != 1000 {
		t.Errorf("audio chunk 0 offset = %d, want 1000", offs.Audio[0])
	}
	if offs.Audio[1] != 1004 { // 2 samples x 2 bytes
		t.Errorf("audio chunk 1 offset = %d, want 1004", offs.Audio[1])
	}

	wantTextStart := uint32(1000 + 6) // 3 audio samples x 2 bytes
	if offs.Text[0][0] != wantTextStart {
		t.Errorf("text offset = %d, want %d", offs.Text[0][0], wantTextStart)
	}

	wantImageStart := wantTextStart + 2 // text sample is 2 bytes
	if offs.Image[0] != wantImageStart {
		t.Errorf("image offset = %d, want %d", offs.Image[0], wantImageStart)
	}
}

func TestPayloadSize_SumsAllTracks(t *testing.T) {
	audio := TrackSamples{Samples: [][]byte{{1, 2, 3}, {4, 5}}}
	text := TrackSamples{Samples: [][]byte{{1}}}
	image := TrackSamples{Samples: [][]byte{{1, 2, 3, 4}}}

	got := PayloadSize(audio, []TrackSamples{text}, image)
	want := int64(5 + 1 + 4)
	if got != want {
		t.Errorf("PayloadSize = %d, want %d", got, want)
	}
}

func TestWriteMdat_HeaderAndOffsets(t *testing.T) {
	audio := TrackSamples{Samples: [][]byte{{1, 2}, {3, 4}}, Plan: stbl.OneSamplePerChunk(2)}
	text := TrackSamples{Samples: [][]byte{{0xA}}, Plan: stbl.OneSamplePerChunk(1)}

	buf := new(bytes.Buffer)
	sw := binary.NewSafeWriter(buf)

	offs, err := WriteMdat(sw, audio, []TrackSamples{text}, TrackSamples{})
	if err != nil {
		t.Fatalf("WriteMdat: %v", err)
	}

	out := buf.Bytes()
	wantSize := uint32(8 + 2 + 2 + 1) // header + 2 audio samples + 1 text sample
	gotSize := uint32(out[0])<<24 | uint32(out[1])<<16 | uint32(out[2])<<8 | uint32(out[3])
	if gotSize != wantSize {
		t.Errorf("mdat box size = %d, want %d", gotSize, wantSize)
	}
	if string(out[4:8]) != "mdat" {
		t.Fatalf("box type = %q, want mdat", out[4:8])
	}

	if offs.PayloadStart != 8 {
		t.Errorf("payload start = %d, want 8", offs.PayloadStart)
	}
	if len(offs.Audio) != 2 || offs.Audio[0] != 8 || offs.Audio[1] != 10 {
		t.Errorf("audio offsets = %v, want [8 10]", offs.Audio)
	}
	if len(offs.Text) != 1 || offs.Text[0][0] != 12 {
		t.Errorf("text offsets = %v, want [[12]]", offs.Text)
	}

	payload := out[8:]
	if !bytes.Equal(payload, []byte{1, 2, 3, 4, 0xA}) {
		t.Errorf("mdat payload = %v, want [1 2 3 4 10]", payload)
	}
}

func TestPatchAllStco_Order(t *testing.T) {
	audioStco := stbl.BuildSTCOPlaceholder(2)
	textStco := stbl.BuildSTCOPlaceholder(1)
	imageStco := stbl.BuildSTCOPlaceholder(1)

	audioTrak := box.New("trak")
	audioStbl := box.New("stbl")
	audioStbl.Add(audioStco)
	audioMinf := box.New("minf")
	audioMinf.Add(audioStbl)
	audioMdia := box.New("mdia")
	audioMdia.Add(audioMinf)
	audioTrak.Add(audioMdia)

	textTrak := box.New("trak")
	textStbl := box.New("stbl")
	textStbl.Add(textStco)
	textMinf := box.New("minf")
	textMinf.Add(textStbl)
	textMdia := box.New("mdia")
	textMdia.Add(textMinf)
	textTrak.Add(textMdia)

	imageTrak := box.New("trak")
	imageStbl := box.New("stbl")
	imageStbl.Add(imageStco)
	imageMinf := box.New("minf")
	imageMinf.Add(imageStbl)
	imageMdia := box.New("mdia")
	imageMdia.Add(imageMinf)
	imageTrak.Add(imageMdia)

	moov := box.New("moov")
	moov.Add(audioTrak, textTrak, imageTrak)

	offs := &Offsets{
		Audio: []uint32{100, 200},
		Text:  [][]uint32{{300}},
		Image: []uint32{400},
	}

	if err := PatchAllStco(moov, offs); err != nil {
		t.Fatalf("PatchAllStco: %v", err)
	}

	assertStcoEntries(t, audioStco, []uint32{100, 200})
	assertStcoEntries(t, textStco, []uint32{300})
	assertStcoEntries(t, imageStco, []uint32{400})
}

func assertStcoEntries(t *testing.T, stco *box.Box, want []uint32) {
	t.Helper()
	p := stco.Payload
	for i, w := range want {
		pos := 8 + i*4
		got := uint32(p[pos])<<24 | uint32(p[pos+1])<<16 | uint32(p[pos+2])<<8 | uint32(p[pos+3])
		if got != w {
			t.Errorf("entry %d = %d, want %d", i, got, w)
		}
	}
}

func TestWriteFreePadding(t *testing.T) {
	buf := new(bytes.Buffer)
	sw := binary.NewSafeWriter(buf)
	if err := WriteFreePadding(sw); err != nil {
		t.Fatalf("WriteFreePadding: %v", err)
	}
	out := buf.Bytes()
	if len(out) != 8+freePaddingSize {
		t.Fatalf("free box len = %d, want %d", len(out), 8+freePaddingSize)
	}
	if string(out[4:8]) != "free" {
		t.Fatalf("type = %q, want free", out[4:8])
	}
	for _, b := range out[8:] {
		if b != 0 {
			t.Fatal("free payload contains non-zero byte")
		}
	}
}
