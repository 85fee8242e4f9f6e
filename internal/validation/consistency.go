package validation

import (
	"fmt"
	"math"
	"sort"

	"clipsight/internal/timeline"
)

// checkConsistency flags cross-field disagreements. Findings here are always
// warnings: the document stays usable, but the caller sees every mismatch.
func checkConsistency(doc *timeline.Document, rawDoc map[string]any, frameTolerance float64) []string {
	var issues []string
	issues = append(issues, checkDurationBounds(doc.DurationSeconds, rawTimelines(rawDoc))...)
	issues = append(issues, checkFrameCount(doc, frameTolerance)...)
	issues = append(issues, checkSummaryClaims(doc)...)
	return issues
}

// checkDurationBounds flags timeline entries whose interval ends after the
// video does. Malformed keys are skipped; the structure checks already report
// them.
func checkDurationBounds(duration float64, timelines map[string]any) []string {
	if duration <= 0 || timelines == nil {
		return nil
	}
	kinds := make([]string, 0, len(timelines))
	for kind := range timelines {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var issues []string
	for _, kind := range kinds {
		entries, ok := timelines[kind].(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			span, ok := timeline.ParseSpan(key)
			if !ok {
				continue
			}
			if float64(span.End) > duration {
				issues = append(issues, fmt.Sprintf(
					"%s has entry at %s beyond video duration %gs", kind, key, duration))
			}
		}
	}
	return issues
}

func checkFrameCount(doc *timeline.Document, tolerance float64) []string {
	if doc.TotalFrames <= 0 || doc.FPS <= 0 || doc.DurationSeconds <= 0 {
		return nil
	}
	expected := doc.DurationSeconds * doc.FPS
	if math.Abs(float64(doc.TotalFrames)-expected) > expected*tolerance {
		return []string{fmt.Sprintf(
			"frame count mismatch: %d frames != %d expected (duration*fps)",
			doc.TotalFrames, int(expected))}
	}
	return nil
}

// checkSummaryClaims is the primary defense against fabricated downstream
// summaries: a summary that claims objects or speech exist must be backed by
// detections in the corresponding timeline.
func checkSummaryClaims(doc *timeline.Document) []string {
	var issues []string
	if claims(doc.MetadataSummary["objects"]) && len(doc.Timeline(timeline.KindObject)) == 0 {
		issues = append(issues, "objects mentioned in metadata summary but objectTimeline is empty")
	}
	if claims(doc.MetadataSummary["speech"]) && len(doc.Timeline(timeline.KindSpeech)) == 0 {
		issues = append(issues, "speech mentioned in metadata summary but speechTimeline is empty")
	}
	return issues
}

// claims reports whether a summary value asserts that content exists.
func claims(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
