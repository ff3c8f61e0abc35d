package mdatio

import (
	"errors"

	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/types"
)

// maxBoxSize is the largest value a 32-bit box size field can hold.
const maxBoxSize = 0xFFFFFFFF

// WriteMdat writes the mdat box header and every track's samples, in
// the fixed order audio / text tracks / image, and returns the
// absolute offset of every chunk for stco patching. The box size is
// computed up front from the sample lengths already in memory, so the
// header is written once with its final value — no seek-back needed.
func WriteMdat(sw *binary.SafeWriter, audio TrackSamples, texts []TrackSamples, image TrackSamples) (*Offsets, error) {
	payloadSize := PayloadSize(audio, texts, image)
	boxSize := uint64(8) + uint64(payloadSize)
	if boxSize > maxBoxSize {
		return nil, &types.OversizeError{Box: "mdat", Size: boxSize}
	}

	if err := binary.Write(sw, uint32(boxSize)); err != nil {
		return nil, &types.OutputError{Err: errors.New("write mdat header: " + err.Error())}
	}
	if err := sw.WriteString("mdat"); err != nil {
		return nil, &types.OutputError{Err: errors.New("write mdat header: " + err.Error())}
	}

	payloadStart := sw.Offset()
	offs := ComputeOffsets(payloadStart, audio, texts, image)

	if err := writeTrack(sw, audio); err != nil {
		return nil, err
	}
	for _, t := range texts {
		if err := writeTrack(sw, t); err != nil {
			return nil, err
		}
	}
	if err := writeTrack(sw, image); err != nil {
		return nil, err
	}

	return offs, nil
}

func writeTrack(sw *binary.SafeWriter, t TrackSamples) error {
	for _, sample := range t.Samples {
		if err := sw.WriteBytes(sample); err != nil {
			return &types.OutputError{Err: errors.New("write sample: " + err.Error())}
		}
	}
	return nil
}
