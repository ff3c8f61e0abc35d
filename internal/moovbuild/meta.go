package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// iTunes data-atom type codes.
const (
	dataTypeUTF8 = 1
	dataTypeJPEG = 13
)

// BuildDataAtom builds the data child every ilst item wraps:
// type(4)+locale(4)+value. Grounded on original_source's
// build_data_atom (meta_builder.cpp).
func BuildDataAtom(value []byte, dataType uint32) *box.Box {
	p := &buffer{}
	p.u32(dataType)
	p.u32(0) // locale
	p.raw(value)
	return box.NewWithPayload("data", p.bytes())
}

// BuildStringItem builds a UTF-8 text tag atom (©nam, ©ART, ©alb, ©gen,
// ©day, ©cmt).
func BuildStringItem(fourCC, value string) *box.Box {
	item := box.New(fourCC)
	item.Add(BuildDataAtom([]byte(value), dataTypeUTF8))
	return item
}

// BuildCoverItem builds the covr tag atom wrapping JPEG cover art.
func BuildCoverItem(jpeg []byte) *box.Box {
	item := box.New("covr")
	item.Add(BuildDataAtom(jpeg, dataTypeJPEG))
	return item
}

// MetadataSet carries the subset of iTunes metadata fields ChapterForge
// authors into ilst.
type MetadataSet struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Year    string
	Comment string
	Cover   []byte
}

// BuildIlst builds the ilst box containing one tag atom per non-empty
// field of m, in the order original_source emits them.
func BuildIlst(m MetadataSet) *box.Box {
	ilst := box.New("ilst")
	if m.Title != "" {
		ilst.Add(BuildStringItem("\xA9nam", m.Title))
	}
	if m.Artist != "" {
		ilst.Add(BuildStringItem("\xA9ART", m.Artist))
	}
	if m.Album != "" {
		ilst.Add(BuildStringItem("\xA9alb", m.Album))
	}
	if m.Genre != "" {
		ilst.Add(BuildStringItem("\xA9gen", m.Genre))
	}
	if m.Year != "" {
		ilst.Add(BuildStringItem("\xA9day", m.Year))
	}
	if m.Comment != "" {
		ilst.Add(BuildStringItem("\xA9cmt", m.Comment))
	}
	if len(m.Cover) > 0 {
		ilst.Add(BuildCoverItem(m.Cover))
	}
	return ilst
}

// BuildMeta wraps ilst in a meta FullBox with its internal mdir hdlr,
// building the ilst payload from m. Grounded on original_source's
// build_meta_atom (meta_builder.cpp).
func BuildMeta(m MetadataSet) *box.Box {
	return buildMetaWithIlst(BuildIlst(m))
}

// BuildMetaFromIlst wraps a verbatim ilst box (e.g. one read back
// unmodified from a source file) in a freshly-built meta/hdlr wrapper,
// avoiding a lossy re-encode of tags ChapterForge doesn't model.
// Grounded on original_source's build_meta_atom_from_ilst.
func BuildMetaFromIlst(ilst *box.Box) *box.Box {
	return buildMetaWithIlst(ilst)
}

func buildMetaWithIlst(ilst *box.Box) *box.Box {
	p := &buffer{}
	p.header(0, 0)
	meta := box.NewWithPayload("meta", p.bytes())
	meta.Add(buildHdlrMetadata(), ilst)
	return meta
}
