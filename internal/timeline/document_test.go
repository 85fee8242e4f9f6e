package timeline

import (
	"strings"
	"testing"
)

const sampleDocument = `{
	"video_id": "vid-123",
	"duration_seconds": 15,
	"total_frames": 450,
	"fps": 30,
	"static_metadata": {
		"captionText": "Watch until the end",
		"stats": {"likes": 100}
	},
	"timelines": {
		"objectTimeline": {
			"0-1s": {"objects": {"person": 1}, "total_objects": 1},
			"1-2s": {"objects": {"person": 1, "cup": 1}, "total_objects": 2}
		},
		"speechTimeline": {
			"0-2s": {"text": "hello world", "start": 0, "end": 2, "confidence": 0.95},
			"5-8s": {"text": "watch this", "start": 5, "end": 8, "confidence": 0.9}
		},
		"expressionTimeline": {
			"0-1s": {"expression": "happy", "confidence": 0.8}
		}
	},
	"metadata_summary": {"word_count": 4}
}`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.VideoID != "vid-123" {
		t.Errorf("VideoID = %q, want vid-123", doc.VideoID)
	}
	if doc.DurationSeconds != 15 {
		t.Errorf("DurationSeconds = %v, want 15", doc.DurationSeconds)
	}
	if doc.TotalFrames != 450 {
		t.Errorf("TotalFrames = %d, want 450", doc.TotalFrames)
	}
	if got := len(doc.Timeline(KindObject)); got != 2 {
		t.Errorf("object timeline has %d entries, want 2", got)
	}
	if doc.Timeline(KindSticker) != nil {
		t.Error("absent timeline should be nil")
	}
	if doc.Raw() == nil {
		t.Error("raw tree should be retained")
	}
}

func TestParseDocumentToleratesMistypedField(t *testing.T) {
	doc, err := Parse([]byte(`{"video_id": "v1", "duration_seconds": "not a number", "timelines": 5}`))
	if err != nil {
		t.Fatalf("Parse should tolerate mistyped fields: %v", err)
	}
	if doc.VideoID != "v1" {
		t.Errorf("VideoID = %q, want v1", doc.VideoID)
	}
	if doc.DurationSeconds != 0 {
		t.Errorf("mistyped duration should decode to zero, got %v", doc.DurationSeconds)
	}
	if doc.Timelines != nil {
		t.Error("mistyped timelines should leave the typed view empty")
	}
}

func TestParseDocumentRejectsNonObject(t *testing.T) {
	if _, err := Parse([]byte(`[1, 2, 3]`)); err == nil {
		t.Fatal("Parse should reject a non-object document")
	}
}

func TestCaptionTruncation(t *testing.T) {
	doc := &Document{StaticMetadata: StaticMetadata{CaptionText: strings.Repeat("a", 600)}}
	if got := len([]rune(doc.Caption(500))); got != 500 {
		t.Fatalf("Caption(500) length = %d, want 500", got)
	}
	short := &Document{StaticMetadata: StaticMetadata{CaptionText: "short"}}
	if got := short.Caption(500); got != "short" {
		t.Fatalf("Caption should pass short captions through, got %q", got)
	}
}

func TestCaptionTruncationCountsRunes(t *testing.T) {
	doc := &Document{StaticMetadata: StaticMetadata{CaptionText: strings.Repeat("日", 600)}}
	got := doc.Caption(500)
	if runes := len([]rune(got)); runes != 500 {
		t.Fatalf("Caption(500) rune length = %d, want 500", runes)
	}
}

func TestTranscriptFallsBackToSpeechTimeline(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Transcript(); got != "hello world watch this" {
		t.Fatalf("Transcript = %q, want speech texts joined in time order", got)
	}
}

func TestTranscriptPrefersSummary(t *testing.T) {
	doc := &Document{
		MetadataSummary: map[string]any{"transcript": "the full transcript"},
		Timelines: map[string]Timeline{
			KindSpeech: {"0-1s": {Text: "ignored"}},
		},
	}
	if got := doc.Transcript(); got != "the full transcript" {
		t.Fatalf("Transcript = %q, want summary value", got)
	}
}

func TestSpeechSegmentsFromTimeline(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	segments := doc.SpeechSegments()
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Start != 0 || segments[0].Text != "hello world" {
		t.Errorf("first segment = %+v", segments[0])
	}
	if segments[1].Start != 5 || segments[1].End != 8 {
		t.Errorf("second segment = %+v", segments[1])
	}
}

func TestSpeechSegmentsDeriveBoundsFromKey(t *testing.T) {
	doc := &Document{
		Timelines: map[string]Timeline{
			KindSpeech: {
				"3-5s": {Text: "no explicit bounds"},
			},
		},
	}
	segments := doc.SpeechSegments()
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Start != 3 || segments[0].End != 5 {
		t.Fatalf("segment bounds = [%v, %v], want [3, 5]", segments[0].Start, segments[0].End)
	}
}
