package box

import (
	"bytes"
	"testing"
)

func TestFixSizeRecursiveAndWrite(t *testing.T) {
	root := New("moov")
	child := NewWithPayload("mvhd", []byte{1, 2, 3, 4})
	root.Add(child)

	if err := root.FixSizeRecursive(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if child.Size() != 8+4 {
		t.Errorf("expected child size 12, got %d", child.Size())
	}
	if root.Size() != 8+child.Size() {
		t.Errorf("expected root size %d, got %d", 8+child.Size(), root.Size())
	}

	var buf bytes.Buffer
	if err := root.Write(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.Bytes()
	if len(out) != int(root.Size()) {
		t.Fatalf("expected %d bytes written, got %d", root.Size(), len(out))
	}

	// Root header: size=20, type=moov
	if out[3] != 20 {
		t.Errorf("expected root size byte 20, got %d", out[3])
	}
	if string(out[4:8]) != "moov" {
		t.Errorf("expected type moov, got %q", out[4:8])
	}
	// Child header follows immediately at offset 8.
	if string(out[12:16]) != "mvhd" {
		t.Errorf("expected child type mvhd, got %q", out[12:16])
	}
	if !bytes.Equal(out[16:20], []byte{1, 2, 3, 4}) {
		t.Errorf("expected child payload preserved, got %v", out[16:20])
	}
}

func TestFind(t *testing.T) {
	root := New("moov")
	trak1 := New("trak")
	trak2 := New("trak")
	stbl := New("stbl")
	trak2.Add(stbl)
	root.Add(trak1, trak2)

	traks := root.Find("trak")
	if len(traks) != 2 {
		t.Fatalf("expected 2 trak boxes, got %d", len(traks))
	}

	if root.FindFirst("stbl") != stbl {
		t.Error("expected FindFirst to locate nested stbl")
	}

	if root.FindFirst("nope") != nil {
		t.Error("expected nil for missing type")
	}

	// Find includes the root itself when it matches.
	if len(root.Find("moov")) != 1 {
		t.Error("expected Find to include a matching root")
	}
}

func TestFindPath(t *testing.T) {
	root := New("moov")
	trak := New("trak")
	mdia := New("mdia")
	stbl := New("stbl")
	mdia.Add(stbl)
	trak.Add(mdia)
	root.Add(trak)

	got := root.FindPath("trak", "mdia", "stbl")
	if got != stbl {
		t.Error("expected FindPath to resolve nested stbl")
	}

	if root.FindPath("trak", "nope") != nil {
		t.Error("expected nil for a broken path")
	}
}

func TestFixSizeRecursiveOversize(t *testing.T) {
	// FixSizeRecursive recomputes every child's size, so the oversize
	// total has to come from real payload bytes. One 1 MiB payload box
	// attached 4097 times sums past 4 GiB without allocating 4 GiB.
	parent := New("moov")
	big := NewWithPayload("free", make([]byte, 1<<20))
	for i := 0; i < 4097; i++ {
		parent.Children = append(parent.Children, big)
	}

	if err := parent.FixSizeRecursive(); err == nil {
		t.Error("expected oversize error")
	}
}

func TestFullBoxHeader(t *testing.T) {
	h := FullBoxHeader(0, 0x000001)
	want := []byte{0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(h, want) {
		t.Errorf("expected %v, got %v", want, h)
	}
}
