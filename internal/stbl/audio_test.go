package stbl

import "testing"

func TestBuildAudioStbl_Reuse(t *testing.T) {
	src := AudioSource{
		StsdPayload: []byte{1, 2, 3},
		SttsPayload: []byte{4, 5, 6},
		StscPayload: []byte{7, 8, 9},
		StszPayload: []byte{10, 11, 12},
		StcoPayload: []byte{13, 14, 15},
	}
	if !src.Reusable() {
		t.Fatal("expected Reusable to be true when all five payloads present")
	}

	stbl := BuildAudioStbl(src)
	if stbl.TypeString() != "stbl" {
		t.Fatalf("expected stbl box, got %q", stbl.TypeString())
	}
	if len(stbl.Children) != 5 {
		t.Fatalf("expected 5 reused children, got %d", len(stbl.Children))
	}
	for i, want := range []string{"stsd", "stts", "stsc", "stsz", "stco"} {
		if stbl.Children[i].TypeString() != want {
			t.Errorf("child %d = %q, want %q", i, stbl.Children[i].TypeString(), want)
		}
	}
}

func TestBuildAudioStbl_Synthesize(t *testing.T) {
	src := AudioSource{
		SampleSizes:     []uint32{100, 120, 110},
		AudioObjectType: 2,
		SamplingIndex:   4,
		ChannelConfig:   2,
		ChunkPlan:       ChunkPlan{3},
	}
	if src.Reusable() {
		t.Fatal("expected Reusable to be false without verbatim payloads")
	}

	stbl := BuildAudioStbl(src)
	if len(stbl.Children) != 5 {
		t.Fatalf("expected 5 synthesized children, got %d", len(stbl.Children))
	}

	stsd := stbl.Children[0]
	if stsd.TypeString() != "stsd" {
		t.Fatalf("expected first child stsd, got %q", stsd.TypeString())
	}
	if len(stsd.Children) != 1 || stsd.Children[0].TypeString() != "mp4a" {
		t.Fatalf("expected stsd to contain one mp4a entry")
	}
	mp4a := stsd.Children[0]
	if len(mp4a.Children) != 1 || mp4a.Children[0].TypeString() != "esds" {
		t.Fatalf("expected mp4a to contain one esds child")
	}

	sizes, err := ParseSTSZ(stbl.Children[3].Payload)
	if err != nil {
		t.Fatalf("ParseSTSZ: %v", err)
	}
	if len(sizes) != 3 || sizes[0] != 100 {
		t.Fatalf("unexpected stsz round trip: %v", sizes)
	}
}

func TestBuildAudioSpecificConfig(t *testing.T) {
	// AAC-LC (2), 44.1kHz (4), stereo (2) should decode back to the
	// same triple through the bit layout aacsrc.parseAudioSpecificConfig uses.
	asc := buildAudioSpecificConfig(2, 4, 2)
	if len(asc) != 2 {
		t.Fatalf("expected 2-byte AudioSpecificConfig, got %d", len(asc))
	}
	aot := asc[0] >> 3
	samplingIndex := (asc[0]&0x07)<<1 | asc[1]>>7
	channelConfig := (asc[1] >> 3) & 0x0F
	if aot != 2 || samplingIndex != 4 || channelConfig != 2 {
		t.Fatalf("round trip = (%d,%d,%d), want (2,4,2)", aot, samplingIndex, channelConfig)
	}
}
