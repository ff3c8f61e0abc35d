// Package timing derives per-chapter sample durations from absolute
// chapter start times, the way an stts (time-to-sample) table needs
// them: every entry but the last is the gap to the next chapter; the
// last runs to the end of the audio.
package timing

// DeriveDurations returns one duration (in milliseconds) per entry in
// startMS, given the total track duration totalMS. startMS must already
// be sorted non-decreasing; DeriveDurations does not sort it.
//
//	duration[i] = max(1, startMS[i+1] - startMS[i])      for i < n-1
//	duration[n-1] = max(1, totalMS - startMS[n-1])       when totalMS > startMS[n-1]
//	duration[n-1] = 1                                    otherwise
//
// A floor of 1ms keeps every stts entry non-zero, which several players
// treat as a corrupt track. DeriveDurations does not itself warn about
// a non-zero first start time — callers own that side effect (see
// mux.Orchestrator), since DeriveDurations has no logger to report through.
func DeriveDurations(startMS []int64, totalMS int64) []int64 {
	n := len(startMS)
	if n == 0 {
		return nil
	}

	durations := make([]int64, n)
	for i := 0; i < n-1; i++ {
		d := startMS[i+1] - startMS[i]
		durations[i] = max(1, d)
	}

	last := n - 1
	if totalMS > startMS[last] {
		durations[last] = max(1, totalMS-startMS[last])
	} else {
		durations[last] = 1
	}

	return durations
}
