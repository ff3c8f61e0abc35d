package stbl

import "testing"

func TestFallbackImageDimensions(t *testing.T) {
	w, h := FallbackImageDimensions()
	if w != 1280 || h != 720 {
		t.Fatalf("fallback dimensions = %dx%d, want 1280x720", w, h)
	}
}

func TestBuildImageStsd(t *testing.T) {
	stsd := BuildImageStsd(640, 480)
	if len(stsd.Children) != 1 || stsd.Children[0].TypeString() != "jpeg" {
		t.Fatalf("expected one jpeg sample entry child")
	}
	jpeg := stsd.Children[0]
	// width/height are big-endian u16 at bytes 24-27 of the sample
	// entry payload (after the 8-byte reserved+dref prefix and five
	// QuickTime video fields); this checks only that the payload reaches
	// past them and the two resolution fields.
	if len(jpeg.Payload) < 36 {
		t.Fatalf("jpeg sample entry payload too short: %d bytes", len(jpeg.Payload))
	}
}

func TestBuildImageStbl(t *testing.T) {
	durations := []uint32{3000, 5000}
	sizes := []uint32{40000, 38000}
	stbl := BuildImageStbl(800, 600, durations, sizes)

	if len(stbl.Children) != 6 {
		t.Fatalf("expected 6 children (stsd,stts,stss,stsc,stsz,stco), got %d", len(stbl.Children))
	}
	wantOrder := []string{"stsd", "stts", "stss", "stsc", "stsz", "stco"}
	for i, want := range wantOrder {
		if stbl.Children[i].TypeString() != want {
			t.Errorf("child %d = %q, want %q", i, stbl.Children[i].TypeString(), want)
		}
	}

	stssEntries, err := ParseSTCO(stbl.Children[2].Payload)
	if err != nil {
		t.Fatalf("parse stss: %v", err)
	}
	if len(stssEntries) != 2 || stssEntries[0] != 1 || stssEntries[1] != 2 {
		t.Fatalf("unexpected stss entries: %v", stssEntries)
	}
}

func TestBuildImageStbl_RepeatedDurationsNotCollapsed(t *testing.T) {
	durations := []uint32{5000, 5000, 5000}
	sizes := []uint32{1000, 1000, 1000}
	stbl := BuildImageStbl(800, 600, durations, sizes)

	sttsEntries, err := parseSTTSForTest(stbl.Children[1].Payload)
	if err != nil {
		t.Fatalf("parse stts: %v", err)
	}
	if len(sttsEntries) != 3 {
		t.Fatalf("expected one stts entry per sample (no RLE collapse), got %d entries: %v", len(sttsEntries), sttsEntries)
	}
	for _, e := range sttsEntries {
		if e.SampleCount != 1 {
			t.Fatalf("expected every entry to cover exactly one sample, got %+v", e)
		}
	}
}
