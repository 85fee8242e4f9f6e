package timeline

import (
	"encoding/json"
	"sort"
)

// Timeline kind names as they appear in unified analysis documents.
const (
	KindObject         = "objectTimeline"
	KindTextOverlay    = "textOverlayTimeline"
	KindSpeech         = "speechTimeline"
	KindGesture        = "gestureTimeline"
	KindExpression     = "expressionTimeline"
	KindSticker        = "stickerTimeline"
	KindSceneChange    = "sceneChangeTimeline"
	KindCameraDistance = "cameraDistanceTimeline"
)

// RequiredKinds lists the timeline kinds every unified analysis document is
// expected to carry. Scene-change and camera-distance timelines are optional
// extras produced by newer detector versions.
func RequiredKinds() []string {
	return []string{
		KindObject,
		KindTextOverlay,
		KindSpeech,
		KindGesture,
		KindExpression,
		KindSticker,
	}
}

// TextDetection is one OCR or sticker detection inside an interval.
type TextDetection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Entry holds the detections recorded for one interval. Fields are populated
// per timeline kind; unrelated fields stay zero.
type Entry struct {
	Objects      map[string]int  `json:"objects,omitempty"`
	TotalObjects int             `json:"total_objects,omitempty"`
	Texts        []TextDetection `json:"texts,omitempty"`
	Stickers     []TextDetection `json:"stickers,omitempty"`
	Gestures     []string        `json:"gestures,omitempty"`
	Expression   string          `json:"expression,omitempty"`
	Text         string          `json:"text,omitempty"`
	Confidence   float64         `json:"confidence,omitempty"`
	Type         string          `json:"type,omitempty"`
	Distance     string          `json:"distance,omitempty"`
	Start        float64         `json:"start,omitempty"`
	End          float64         `json:"end,omitempty"`
}

// Timeline maps interval keys to their detection entries. Keys need not be
// contiguous or uniform-width.
type Timeline map[string]Entry

// UnmarshalJSON decodes a timeline tolerantly: entries that are not JSON
// objects or do not match the Entry shape are dropped rather than failing the
// whole timeline. The validator reports such entries from the raw tree.
func (tl *Timeline) UnmarshalJSON(data []byte) error {
	var rawEntries map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		return err
	}
	out := make(Timeline, len(rawEntries))
	for key, raw := range rawEntries {
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		out[key] = entry
	}
	*tl = out
	return nil
}

// SortedKeys returns the well-formed interval keys ordered by start second.
// Malformed keys are omitted.
func (tl Timeline) SortedKeys() []string {
	type keyed struct {
		key   string
		start int
	}
	ordered := make([]keyed, 0, len(tl))
	for key := range tl {
		start, ok := ParseStart(key)
		if !ok {
			continue
		}
		ordered = append(ordered, keyed{key: key, start: start})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		return ordered[i].key < ordered[j].key
	})
	keys := make([]string, len(ordered))
	for i, k := range ordered {
		keys[i] = k.key
	}
	return keys
}

// SpeechSegment is a transcribed stretch of speech. Input order is not
// guaranteed; engines sort by Start before computing gaps.
type SpeechSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// SortSegments orders segments by start time, returning a new slice.
func SortSegments(segments []SpeechSegment) []SpeechSegment {
	sorted := make([]SpeechSegment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}
