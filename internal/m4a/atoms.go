// Package m4a parses MPEG-4 audio containers (M4A/M4B) recovering the
// audio sample table, track metadata, and iTunes-style tags a mux needs
// to reuse or a read-back call needs to report, plus the flat-scan
// fallback used when structured parsing fails on a malformed input.
package m4a

import (
	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/logging"
	"github.com/chapterforge/chapterforge/internal/types"
)

// maxAtomSize is the sanity ceiling readAtomHeader clamps a declared
// atom size to: no legitimate moov/trak/stbl child approaches 512 MiB,
// so a bogus or adversarial size field this large is treated the same
// as one that overruns its enclosing parent.
const maxAtomSize = 512 * 1024 * 1024

// atom is a read-only view of one box header within a source file: a
// byte range plus type, not a loaded payload. Grounded on the
// teacher's Atom (internal/m4a/atoms.go), generalized to the 64-bit
// extended-size form since an audiobook's mdat can exceed 4 GiB.
type atom struct {
	size     uint64
	typ      string
	offset   int64
	extended bool
}

func (a *atom) dataOffset() int64 {
	if a.extended {
		return a.offset + 16
	}
	return a.offset + 8
}

func (a *atom) dataSize() uint64 {
	headerSize := uint64(8)
	if a.extended {
		headerSize = 16
	}
	if a.size < headerSize {
		return 0
	}
	return a.size - headerSize
}

func (a *atom) dataEnd() int64 {
	return a.dataOffset() + int64(a.dataSize())
}

// readAtomHeader reads one box header at offset. parentEnd is the
// exclusive end of the enclosing container (or the file size at the
// top level); declared sizes exceeding maxAtomSize or overrunning
// parentEnd are clamped to fit. If the clamp leaves less than a full
// header's worth of bytes, the atom can't even be identified reliably
// and is reported as corrupted, which the caller propagates up as a
// parse failure for that branch (driving the flat-scan fallback when
// no track survives).
func readAtomHeader(sr *binary.SafeReader, offset, parentEnd int64) (*atom, error) {
	size32, err := binary.Read[uint32](sr, offset, "atom size")
	if err != nil {
		return nil, err
	}

	typeBytes := make([]byte, 4)
	if err := sr.ReadAt(typeBytes, offset+4, "atom type"); err != nil {
		return nil, err
	}

	a := &atom{typ: string(typeBytes), offset: offset}

	headerSize := uint64(8)
	if size32 == 1 {
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		a.size = size64
		a.extended = true
		headerSize = 16
	} else {
		a.size = uint64(size32)
	}

	if a.size < headerSize {
		return nil, &types.CorruptedAtomError{Path: sr.Path(), Offset: offset, Reason: "atom size below minimum header length"}
	}

	clamped := a.size
	if clamped > maxAtomSize {
		clamped = maxAtomSize
	}
	if parentEnd > offset {
		if remaining := uint64(parentEnd - offset); clamped > remaining {
			clamped = remaining
		}
	}
	if clamped != a.size {
		logging.Warnf("atom %q at offset %d declares size %d, clamped to %d", a.typ, offset, a.size, clamped)
		a.size = clamped
	}

	if a.size < headerSize {
		return nil, &types.CorruptedAtomError{Path: sr.Path(), Offset: offset, Reason: "atom '" + a.typ + "' leaves insufficient bytes after sanity-bound clamp"}
	}

	return a, nil
}

// findAtom returns the first atom of typ within [start, end).
func findAtom(sr *binary.SafeReader, start, end int64, typ string) (*atom, error) {
	offset := start
	for offset < end {
		a, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return nil, err
		}
		if a.typ == typ {
			return a, nil
		}
		offset += int64(a.size)
	}
	return nil, &types.CorruptedAtomError{Path: sr.Path(), Offset: start, Reason: "atom '" + typ + "' not found"}
}

// findAllAtoms returns every top-level atom of typ within [start, end),
// used to walk multiple sibling trak boxes.
func findAllAtoms(sr *binary.SafeReader, start, end int64, typ string) ([]*atom, error) {
	var out []*atom
	offset := start
	for offset < end {
		a, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return out, err
		}
		if a.typ == typ {
			out = append(out, a)
		}
		offset += int64(a.size)
	}
	return out, nil
}

// readPayload reads the full data range of an atom into memory.
func readPayload(sr *binary.SafeReader, a *atom) ([]byte, error) {
	buf := make([]byte, a.dataSize())
	if len(buf) == 0 {
		return buf, nil
	}
	if err := sr.ReadAt(buf, a.dataOffset(), "atom payload ("+a.typ+")"); err != nil {
		return nil, err
	}
	return buf, nil
}

// readRawBoxPayload reads an atom's payload (everything after its
// header, FullBox version+flags included), the form a FullBox payload
// capture needs when the box is later rewrapped verbatim
// (stsd/stts/stsc/stsz/stco reuse).
func readRawBoxPayload(sr *binary.SafeReader, a *atom) ([]byte, error) {
	return readPayload(sr, a)
}
