package extract

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"clipsight/internal/analysis"
	"clipsight/internal/metrics/framing"
	"clipsight/internal/timeline"
	"clipsight/internal/validation"
)

func sampleDoc(t *testing.T) *timeline.Document {
	t.Helper()
	doc, err := timeline.Parse([]byte(`{
		"video_id": "vid-9",
		"duration_seconds": 30,
		"static_metadata": {"captionText": "a caption", "stats": {"likes": 3}},
		"timelines": {
			"objectTimeline": {"0-1s": {"objects": {"person": 1}}, "4-5s": {"objects": {"person": 1}}},
			"textOverlayTimeline": {"1-2s": {"texts": [{"text": "HI"}]}},
			"speechTimeline": {"0-2s": {"text": "hello there", "start": 0, "end": 2}},
			"gestureTimeline": {"2-3s": {"gestures": ["wave"]}},
			"expressionTimeline": {"0-1s": {"expression": "happy"}},
			"stickerTimeline": {},
			"sceneChangeTimeline": {"3-4s": {"type": "cut"}, "12-13s": {"type": "cut"}}
		}
	}`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestExtractHookAnalysis(t *testing.T) {
	e := New(validation.New(validation.Lenient), WithFirstSeconds(5))
	ctx, err := e.Extract(sampleDoc(t), PurposeHookAnalysis)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ctx.VideoID != "vid-9" {
		t.Errorf("VideoID = %q", ctx.VideoID)
	}
	section, ok := ctx.Sections["first_5_seconds"].(map[string]any)
	if !ok {
		t.Fatalf("missing first_5_seconds section: %v", ctx.Sections)
	}
	objects, ok := section[timeline.KindObject].([]SampledEntry)
	if !ok || len(objects) != 2 {
		t.Fatalf("object section = %v", section[timeline.KindObject])
	}
	cuts, ok := section[timeline.KindSceneChange].([]SampledEntry)
	if !ok || len(cuts) != 1 || cuts[0].Key != "3-4s" {
		t.Fatalf("scene-change section = %v, want only the cut before 5s", section[timeline.KindSceneChange])
	}
	if ctx.Provenance.Purpose != "hook_analysis" || ctx.Provenance.Source != "ml_detections" {
		t.Fatalf("provenance = %+v", ctx.Provenance)
	}
	if ctx.Provenance.RunID == "" {
		t.Fatal("provenance should carry a run id")
	}
}

func TestExtractFramingUsesEnhancedData(t *testing.T) {
	doc, err := timeline.Parse([]byte(`{
		"video_id": "vid-e",
		"duration_seconds": 10,
		"static_metadata": {"captionText": "c", "stats": {}},
		"timelines": {
			"objectTimeline": {"0-1s": {"objects": {"person": 1}}},
			"textOverlayTimeline": {},
			"speechTimeline": {},
			"gestureTimeline": {},
			"expressionTimeline": {"0-1s": {"expression": "happy"}},
			"stickerTimeline": {}
		},
		"metadata_summary": {
			"enhanced_human_analysis": {"face_screen_time_ratio": 0.9},
			"action_hints": ["demonstrating"]
		}
	}`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}

	e := New(validation.New(validation.Lenient))
	ctx, err := e.Extract(doc, PurposeFramingAnalysis)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	metrics, ok := ctx.Sections["framing_metrics"].(framing.Metrics)
	if !ok {
		t.Fatalf("missing framing section: %v", ctx.Sections)
	}
	if metrics.FaceScreenTimeRatio != 0.9 {
		t.Fatalf("enhanced face ratio should override the computed one: %v", metrics.FaceScreenTimeRatio)
	}
	if metrics.InferredIntent != "product_demo" {
		t.Fatalf("InferredIntent = %q, want product_demo from the action hint", metrics.InferredIntent)
	}
}

func TestExtractEntryCountsAndCaption(t *testing.T) {
	e := New(validation.New(validation.Lenient))
	ctx, err := e.Extract(sampleDoc(t), PurposeSummary)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if ctx.EntryCounts[timeline.KindObject] != 2 {
		t.Errorf("object entry count = %d, want 2", ctx.EntryCounts[timeline.KindObject])
	}
	if ctx.Caption != "a caption" {
		t.Errorf("Caption = %q", ctx.Caption)
	}
	if len(ctx.Sections) != 0 {
		t.Errorf("summary purpose should carry no raw sections: %v", ctx.Sections)
	}
}

func TestExtractUnknownPurpose(t *testing.T) {
	t.Run("strict errors", func(t *testing.T) {
		e := New(validation.New(validation.Strict))
		if _, err := e.Extract(sampleDoc(t), Purpose("bogus")); err == nil {
			t.Fatal("unknown purpose should error in strict mode")
		}
	})
	t.Run("lenient falls back", func(t *testing.T) {
		e := New(validation.New(validation.Lenient))
		ctx, err := e.Extract(sampleDoc(t), Purpose("bogus"))
		if err != nil {
			t.Fatalf("lenient mode should not error: %v", err)
		}
		if ctx.Error == "" {
			t.Fatal("fallback context should carry the error text")
		}
	})
}

func TestExtractNilDocument(t *testing.T) {
	strict := New(validation.New(validation.Strict))
	if _, err := strict.Extract(nil, PurposeSummary); err == nil {
		t.Fatal("strict mode should reject a nil document")
	}

	lenient := New(validation.New(validation.Lenient))
	ctx, err := lenient.Extract(nil, PurposeSummary)
	if err != nil {
		t.Fatalf("lenient mode should not error: %v", err)
	}
	if ctx.Error == "" {
		t.Fatal("fallback context should describe the failure")
	}
}

func TestExtractStrictRejectsInvalidDocument(t *testing.T) {
	doc, err := timeline.Parse([]byte(`{"timelines": {}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := New(validation.New(validation.Strict))
	if _, err := e.Extract(doc, PurposeSummary); err == nil {
		t.Fatal("structurally invalid document should error in strict mode")
	}
}

func TestSampleBounded(t *testing.T) {
	for _, size := range []int{1, 7, 50, 137, 500} {
		tl := timeline.Timeline{}
		for i := 0; i < size; i++ {
			tl[fmt.Sprintf("%d-%ds", i, i+1)] = timeline.Entry{Expression: "happy"}
		}
		sampled := Sample(tl, 50)
		if len(sampled) > 50 {
			t.Fatalf("Sample(%d entries) returned %d, exceeds bound", size, len(sampled))
		}
		if size <= 50 && len(sampled) != size {
			t.Fatalf("Sample(%d entries) returned %d, want all", size, len(sampled))
		}
	}
}

func TestSampleEvenlySpaced(t *testing.T) {
	tl := timeline.Timeline{}
	for i := 0; i < 100; i++ {
		tl[fmt.Sprintf("%d-%ds", i, i+1)] = timeline.Entry{}
	}
	sampled := Sample(tl, 10)
	if len(sampled) != 10 {
		t.Fatalf("got %d entries, want 10", len(sampled))
	}
	if sampled[0].Key != "0-1s" || sampled[1].Key != "10-11s" {
		t.Fatalf("sampling stride wrong: %s, %s", sampled[0].Key, sampled[1].Key)
	}
}

func TestSampleMalformedKeysInert(t *testing.T) {
	tl := timeline.Timeline{
		"0-1s":  {},
		"bogus": {},
		"2-3s":  {},
	}
	sampled := Sample(tl, 10)
	if len(sampled) != 2 {
		t.Fatalf("malformed keys must not be sampled: %+v", sampled)
	}
}

func TestFirstSecondsCutoff(t *testing.T) {
	tl := timeline.Timeline{
		"0-1s":  {},
		"4-5s":  {},
		"5-6s":  {},
		"9-10s": {},
	}
	filtered := FirstSeconds(tl, 5)
	if len(filtered) != 2 {
		t.Fatalf("got %d entries, want the two starting before 5s: %+v", len(filtered), filtered)
	}
}

func TestParsePurpose(t *testing.T) {
	if _, err := ParsePurpose("nonsense"); err == nil {
		t.Fatal("unknown purpose should fail to parse")
	}
	if !errorsIsConfiguration(t, "nonsense") {
		t.Fatal("parse failure should wrap ErrConfiguration")
	}
	purpose, err := ParsePurpose("  Hook_Analysis ")
	if err != nil || purpose != PurposeHookAnalysis {
		t.Fatalf("ParsePurpose normalization failed: %v, %v", purpose, err)
	}
}

func errorsIsConfiguration(t *testing.T, value string) bool {
	t.Helper()
	_, err := ParsePurpose(value)
	return errors.Is(err, analysis.ErrConfiguration)
}

func TestProvenanceClock(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := New(validation.New(validation.Lenient), withClock(func() time.Time { return fixed }))
	ctx, err := e.Extract(sampleDoc(t), PurposeSummary)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !ctx.Provenance.ExtractedAt.Equal(fixed) {
		t.Fatalf("ExtractedAt = %v, want %v", ctx.Provenance.ExtractedAt, fixed)
	}
}
