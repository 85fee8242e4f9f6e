package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StaticMetadata carries the scraped video metadata. Only the fields the core
// reads are typed; everything else stays in the raw tree.
type StaticMetadata struct {
	CaptionText string         `json:"captionText"`
	Stats       map[string]any `json:"stats"`
}

// Document is the unified analysis aggregate for one video. It is produced
// entirely by external perception collaborators; the core only reads it.
type Document struct {
	VideoID         string
	DurationSeconds float64
	TotalFrames     int
	FPS             float64
	StaticMetadata  StaticMetadata
	Timelines       map[string]Timeline
	MetadataSummary map[string]any
	Insights        map[string]any

	raw any
}

// Raw returns the untyped JSON tree the document was decoded from. The
// validator and fabrication scanner operate on this tree so that mistyped
// fields dropped by the tolerant decode are still visible to checks.
func (d *Document) Raw() any {
	if d == nil {
		return nil
	}
	return d.raw
}

// Timeline returns the named timeline, which may be nil.
func (d *Document) Timeline(kind string) Timeline {
	if d == nil {
		return nil
	}
	return d.Timelines[kind]
}

// Caption returns the caption truncated to at most limit runes.
func (d *Document) Caption(limit int) string {
	caption := d.StaticMetadata.CaptionText
	if limit <= 0 {
		return caption
	}
	runes := []rune(caption)
	if len(runes) <= limit {
		return caption
	}
	return string(runes[:limit])
}

// Transcript returns the full spoken transcript: the metadata summary value
// when present, otherwise the speech timeline texts joined in time order.
func (d *Document) Transcript() string {
	if d == nil {
		return ""
	}
	if value, ok := d.MetadataSummary["transcript"].(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	speech := d.Timeline(KindSpeech)
	parts := make([]string, 0, len(speech))
	for _, key := range speech.SortedKeys() {
		if text := strings.TrimSpace(speech[key].Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// SpeechSegments returns speech segments sorted by start time. Segments come
// from the metadata summary when present; otherwise they are derived from the
// speech timeline using explicit start/end fields or the interval bounds.
func (d *Document) SpeechSegments() []SpeechSegment {
	if d == nil {
		return nil
	}
	if segs := decodeSummarySegments(d.MetadataSummary["speech_segments"]); len(segs) > 0 {
		return SortSegments(segs)
	}
	speech := d.Timeline(KindSpeech)
	segments := make([]SpeechSegment, 0, len(speech))
	for key, entry := range speech {
		if strings.TrimSpace(entry.Text) == "" {
			continue
		}
		seg := SpeechSegment{
			Start:      entry.Start,
			End:        entry.End,
			Text:       entry.Text,
			Confidence: entry.Confidence,
		}
		if seg.End <= seg.Start {
			span, ok := ParseSpan(key)
			if !ok {
				continue
			}
			seg.Start = float64(span.Start)
			seg.End = float64(span.End)
		}
		segments = append(segments, seg)
	}
	return SortSegments(segments)
}

// UnmarshalJSON decodes a document field by field so that a single mistyped
// field (for example "timelines": 5) degrades to a missing typed view instead
// of failing the whole decode. The raw tree is always retained.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode document: not a JSON object: %w", err)
	}

	*d = Document{raw: raw}
	tryDecode(fields["video_id"], &d.VideoID)
	tryDecode(fields["duration_seconds"], &d.DurationSeconds)
	tryDecode(fields["total_frames"], &d.TotalFrames)
	tryDecode(fields["fps"], &d.FPS)
	tryDecode(fields["static_metadata"], &d.StaticMetadata)
	tryDecode(fields["metadata_summary"], &d.MetadataSummary)
	tryDecode(fields["insights"], &d.Insights)

	if rawTimelines, ok := fields["timelines"]; ok {
		var perKind map[string]json.RawMessage
		if err := json.Unmarshal(rawTimelines, &perKind); err == nil {
			d.Timelines = make(map[string]Timeline, len(perKind))
			for kind, rawTimeline := range perKind {
				var tl Timeline
				if err := json.Unmarshal(rawTimeline, &tl); err != nil {
					continue
				}
				d.Timelines[kind] = tl
			}
		}
	}
	return nil
}

// Parse decodes a unified analysis document from JSON bytes.
func Parse(data []byte) (*Document, error) {
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and decodes a unified analysis document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return doc, nil
}

func tryDecode(raw json.RawMessage, target any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, target)
}

func decodeSummarySegments(value any) []SpeechSegment {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	segments := make([]SpeechSegment, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		seg := SpeechSegment{}
		if v, ok := entry["start"].(float64); ok {
			seg.Start = v
		}
		if v, ok := entry["end"].(float64); ok {
			seg.End = v
		}
		if v, ok := entry["text"].(string); ok {
			seg.Text = v
		}
		if v, ok := entry["confidence"].(float64); ok {
			seg.Confidence = v
		}
		if strings.TrimSpace(seg.Text) == "" && seg.End <= seg.Start {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
