package moovbuild

import "github.com/chapterforge/chapterforge/internal/box"

// maxChplChapters is chpl's hard limit: the chapter count is a single
// byte.
const maxChplChapters = 255

// BuildChpl builds the Nero chapter list: version+flags+u8 count, then
// per chapter u64 start_ticks(ms)+u8 title_len+title_bytes. titles and
// durationsMS must be the same length; start times accumulate from
// each chapter's duration. Grounded on original_source's build_chpl
// (udta_builder.cpp).
func BuildChpl(titles []string, durationsMS []uint32) *box.Box {
	count := len(titles)
	if count > maxChplChapters {
		count = maxChplChapters
	}

	p := &buffer{}
	p.header(0, 0)
	p.u8(uint8(count))

	var startMS uint64
	for i := 0; i < count; i++ {
		title := titles[i]
		if len(title) > 255 {
			title = title[:255]
		}
		p.u64(startMS)
		p.u8(uint8(len(title)))
		p.raw([]byte(title))
		startMS += uint64(durationsMS[i])
	}

	return box.NewWithPayload("chpl", p.bytes())
}

// BuildUdta wraps meta and chpl in a udta box. Either may be nil.
// Grounded on original_source's build_udta (udta_builder.cpp).
func BuildUdta(meta, chpl *box.Box) *box.Box {
	udta := box.New("udta")
	udta.Add(meta, chpl)
	return udta
}
