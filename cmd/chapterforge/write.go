package main

import (
	"fmt"

	"github.com/chapterforge/chapterforge"
)

func runWrite(inputAudioPath, chapterJSONPath, outputPath string, faststart bool) error {
	var opts []chapterforge.MuxOption
	if faststart {
		opts = append(opts, chapterforge.WithFastStart())
	}

	status := chapterforge.MuxFromJSON(inputAudioPath, chapterJSONPath, outputPath, opts...)
	if !status.Ok {
		return fmt.Errorf("failed to mux m4a: %s", status.Message)
	}

	fmt.Printf("Wrote: %s\n", outputPath)
	return nil
}
