// Package box implements the typed ISO/BMFF box (atom) tree that every
// authored ChapterForge container is assembled from: a uniform node
// type with a FourCC type, an optional raw payload, and an ordered list
// of children, plus the two delicate operations that turn the tree into
// bytes — recursive size fixup and in-order serialization.
package box

import (
	"fmt"
	"io"

	"github.com/chapterforge/chapterforge/internal/binary"
)

// maxBoxSize is the largest value a 32-bit box size field can hold.
// ChapterForge never emits the 64-bit extended-size form; a box that
// would not fit is a hard failure (see FixSizeRecursive).
const maxBoxSize = 0xFFFFFFFF

// Box is one node of an ISO/BMFF atom tree. A Box may carry a raw
// payload, children, or both: several ISO boxes (meta, stsd) are a
// FullBox header followed by child boxes, so payload-then-children is
// not an either/or choice.
type Box struct {
	Type     [4]byte
	Payload  []byte
	Children []*Box

	size uint64 // set by FixSizeRecursive; 0 means "not yet computed"
}

// New creates an empty box of the given four-character type. fourCC
// must be exactly 4 bytes (ASCII for standard atoms; raw bytes for
// ilst item keys like "\xA9nam").
func New(fourCC string) *Box {
	b := &Box{}
	copy(b.Type[:], fourCC)
	return b
}

// NewWithPayload creates a box with an initial payload and no children.
func NewWithPayload(fourCC string, payload []byte) *Box {
	b := New(fourCC)
	b.Payload = payload
	return b
}

// TypeString returns the box's four-character type as a string.
func (b *Box) TypeString() string {
	return string(b.Type[:])
}

// Add appends one or more children, in order, and returns the box for
// chaining (Add returns the parent, not the child, matching the
// "builder returns boxes; the mux wires them together" composition
// style used throughout the moovbuild package).
func (b *Box) Add(children ...*Box) *Box {
	for _, c := range children {
		if c == nil {
			continue
		}
		b.Children = append(b.Children, c)
	}
	return b
}

// Find performs a pre-order traversal from b (inclusive) and returns
// every box whose type matches fourCC.
func (b *Box) Find(fourCC string) []*Box {
	var out []*Box
	var want [4]byte
	copy(want[:], fourCC)

	var walk func(n *Box)
	walk = func(n *Box) {
		if n.Type == want {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(b)
	return out
}

// FindFirst returns the first pre-order match for fourCC, or nil.
func (b *Box) FindFirst(fourCC string) *Box {
	matches := b.Find(fourCC)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// FindPath descends a path of FourCCs from b, taking at each step the
// first immediate-or-nested match (FindFirst) within the previous
// result's subtree. It returns nil if any step finds no match.
func (b *Box) FindPath(path ...string) *Box {
	cur := b
	for _, step := range path {
		cur = cur.FindFirst(step)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Size returns the box's total size (8-byte header + payload + all
// children), including the cached 8-byte header. It is only valid
// after FixSizeRecursive has been called on this box or an ancestor
// that includes it.
func (b *Box) Size() uint64 {
	return b.size
}

// FixSizeRecursive walks the tree post-order and sets the cached size on
// every node: 8 (header) + len(payload) + sum(child sizes). It must be
// called once, after the tree is fully assembled and before Write, and
// returns an error if any node's total would exceed a 32-bit size
// field (notably a multi-gigabyte mdat).
func (b *Box) FixSizeRecursive() error {
	total := uint64(8) + uint64(len(b.Payload))
	for _, c := range b.Children {
		if err := c.FixSizeRecursive(); err != nil {
			return err
		}
		total += c.size
	}
	if total > maxBoxSize {
		return fmt.Errorf("box %q size %d exceeds 32-bit limit", b.TypeString(), total)
	}
	b.size = total
	return nil
}

// Write serializes the box and its subtree to w: u32(size) || type ||
// payload || children*, recursively, in declaration order. FixSizeRecursive
// must have been called first; Write does not recompute sizes.
func (b *Box) Write(w io.Writer) error {
	sw, ok := w.(*binary.SafeWriter)
	if !ok {
		sw = binary.NewSafeWriter(w)
	}
	return b.writeTo(sw)
}

func (b *Box) writeTo(sw *binary.SafeWriter) error {
	if err := binary.Write(sw, uint32(b.size)); err != nil {
		return fmt.Errorf("writing %q header: %w", b.TypeString(), err)
	}
	if err := sw.WriteBytes(b.Type[:]); err != nil {
		return fmt.Errorf("writing %q type: %w", b.TypeString(), err)
	}
	if len(b.Payload) > 0 {
		if err := sw.WriteBytes(b.Payload); err != nil {
			return fmt.Errorf("writing %q payload: %w", b.TypeString(), err)
		}
	}
	for _, c := range b.Children {
		if err := c.writeTo(sw); err != nil {
			return err
		}
	}
	return nil
}

// FullBoxHeader builds the 4-byte version+flags prefix shared by every
// FullBox-style atom payload (hdlr, meta, stsd, stts, stsc, stsz, stco,
// elst, dref, url, mvhd, mdhd, tkhd, chpl, nmhd, smhd, vmhd, esds).
func FullBoxHeader(version uint8, flags uint32) []byte {
	return []byte{
		version,
		byte(flags >> 16),
		byte(flags >> 8),
		byte(flags),
	}
}
