package speech

import (
	"math"

	"clipsight/internal/timeline"
)

const gestureSyncWindow = 1.0

// applySync fills the cross-modal fields: gestures landing inside speech
// segments, face presence while speaking, and expression variety.
func applySync(metrics *Metrics, segments []timeline.SpeechSegment, in Inputs) {
	if len(segments) == 0 {
		return
	}

	gestureStarts := []float64{}
	for key, entry := range in.Gestures {
		start, ok := timeline.ParseStart(key)
		if !ok || len(entry.Gestures) == 0 {
			continue
		}
		gestureStarts = append(gestureStarts, float64(start))
	}
	synced := 0
	for _, seg := range segments {
		for _, gs := range gestureStarts {
			if gs >= seg.Start-gestureSyncWindow && gs <= seg.End+gestureSyncWindow {
				synced++
				break
			}
		}
	}
	metrics.GestureSyncRatio = round3(float64(synced) / float64(len(segments)))

	faceSeconds := map[int]bool{}
	expressionsSeen := map[string]bool{}
	for key, entry := range in.Expressions {
		start, ok := timeline.ParseStart(key)
		if !ok || entry.Expression == "" {
			continue
		}
		faceSeconds[start] = true
	}

	var speakingSeconds, facedSeconds int
	for _, seg := range segments {
		onCamera := false
		for sec := int(seg.Start); sec < int(math.Ceil(seg.End)); sec++ {
			speakingSeconds++
			if faceSeconds[sec] {
				facedSeconds++
				onCamera = true
			}
		}
		if !onCamera {
			metrics.OffCameraSegments = append(metrics.OffCameraSegments, seg)
		}
		for key, entry := range in.Expressions {
			start, ok := timeline.ParseStart(key)
			if !ok || entry.Expression == "" {
				continue
			}
			if float64(start) >= seg.Start && float64(start) < seg.End {
				expressionsSeen[entry.Expression] = true
			}
		}
	}
	if speakingSeconds > 0 {
		metrics.FaceOnScreenRatio = round3(float64(facedSeconds) / float64(speakingSeconds))
	}
	metrics.ExpressionVariety = len(expressionsSeen)
}
