package mdatio

import (
	"github.com/chapterforge/chapterforge/internal/box"
	"github.com/chapterforge/chapterforge/internal/stbl"
)

// PatchAllStco rewrites every stco table in moov with the absolute
// offsets in offs, in the same deterministic order the builders emit
// them: the audio track first, then each text track, then the image
// track. The audio stco is patched even when its sample table was
// reused verbatim from a source file, since absolute offsets always
// depend on the new file's layout.
func PatchAllStco(moov *box.Box, offs *Offsets) error {
	stcos := moov.Find("stco")
	idx := 0

	if idx < len(stcos) {
		if err := stbl.PatchSTCO(stcos[idx], offs.Audio); err != nil {
			return err
		}
		idx++
	}

	for _, textOffsets := range offs.Text {
		if idx >= len(stcos) {
			break
		}
		if err := stbl.PatchSTCO(stcos[idx], textOffsets); err != nil {
			return err
		}
		idx++
	}

	if len(offs.Image) > 0 && idx < len(stcos) {
		if err := stbl.PatchSTCO(stcos[idx], offs.Image); err != nil {
			return err
		}
	}

	return nil
}
