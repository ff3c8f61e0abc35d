package mux

import (
	"fmt"

	"github.com/chapterforge/chapterforge/internal/types"
)

// validateInput rejects a WriteInput that can never produce a usable
// container: no audio, or audio with zero decoded samples.
func validateInput(in WriteInput) error {
	if in.Audio == nil || in.Audio.SampleCount() == 0 {
		return &types.InvalidInputError{Reason: "no audio samples to author"}
	}
	return nil
}

// invalidImageError reports that the chapter image at index i is not a
// parseable, 4:2:0-chroma JPEG, which original_source's write_mp4
// treats as a hard failure rather than a warning.
func invalidImageError(i int) error {
	return &types.InvalidInputError{Reason: fmt.Sprintf("chapter image %d is not a 4:2:0 JPEG", i)}
}
