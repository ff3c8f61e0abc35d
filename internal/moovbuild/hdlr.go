package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// buildHdlr builds a version-0 hdlr payload: pre_defined, handler_type,
// reserved x3, NUL-terminated name. Grounded on original_source's
// build_hdlr (hdlr_builder.cpp).
func buildHdlr(handlerType, name string) *box.Box {
	p := &buffer{}
	p.header(0, 0)
	p.zero(4) // pre_defined
	p.raw([]byte(handlerType))
	p.zero(12) // reserved
	p.raw([]byte(name))
	p.u8(0) // NUL terminator
	return box.NewWithPayload("hdlr", p.bytes())
}

// BuildHdlrSound builds the audio track's handler reference box.
func BuildHdlrSound() *box.Box {
	return buildHdlr("soun", "sound handler")
}

// BuildHdlrText builds a text-chapter-track handler reference box with
// a caller-supplied component name.
func BuildHdlrText(name string) *box.Box {
	return buildHdlr("text", name)
}

// BuildHdlrVideo builds the image-chapter-track handler reference box.
func BuildHdlrVideo() *box.Box {
	return buildHdlr("vide", "Chapter Images")
}

// buildHdlrMetadata builds the internal hdlr nested inside meta,
// identifying the iTunes metadata handler.
func buildHdlrMetadata() *box.Box {
	return buildHdlr("mdir", "ilst handler")
}
