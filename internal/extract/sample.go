package extract

import "clipsight/internal/timeline"

// SampledEntry pairs an interval key with its entry, preserving time order
// in JSON output.
type SampledEntry struct {
	Key   string         `json:"key"`
	Entry timeline.Entry `json:"entry"`
}

// Sample takes at most max entries from a timeline, evenly spaced across its
// sorted keys. Stride is max(1, len/max), so short bursts between strides can
// be dropped; the bound on output size is the accepted trade-off.
func Sample(tl timeline.Timeline, max int) []SampledEntry {
	keys := tl.SortedKeys()
	if max <= 0 || len(keys) == 0 {
		return []SampledEntry{}
	}
	stride := len(keys) / max
	if stride < 1 {
		stride = 1
	}
	sampled := make([]SampledEntry, 0, max)
	for i := 0; i < len(keys) && len(sampled) < max; i += stride {
		sampled = append(sampled, SampledEntry{Key: keys[i], Entry: tl[keys[i]]})
	}
	return sampled
}

// FirstSeconds keeps entries whose interval starts before the cutoff.
func FirstSeconds(tl timeline.Timeline, seconds int) []SampledEntry {
	filtered := []SampledEntry{}
	for _, key := range tl.SortedKeys() {
		start, ok := timeline.ParseStart(key)
		if !ok || start >= seconds {
			continue
		}
		filtered = append(filtered, SampledEntry{Key: key, Entry: tl[key]})
	}
	return filtered
}
