package density

import (
	"testing"

	"clipsight/internal/timeline"
)

func textEntry(n int) timeline.Entry {
	texts := make([]timeline.TextDetection, n)
	for i := range texts {
		texts[i] = timeline.TextDetection{Text: "t"}
	}
	return timeline.Entry{Texts: texts}
}

func TestComputePeaksTimeOrdered(t *testing.T) {
	// Density 5 at second 2 and 8 at second 6; everything else empty.
	timelines := map[string]timeline.Timeline{
		timeline.KindTextOverlay: {
			"2-3s": textEntry(5),
			"6-7s": textEntry(8),
		},
	}
	metrics := Compute(timelines, 10)

	if metrics.TotalElements != 13 {
		t.Fatalf("TotalElements = %d, want 13", metrics.TotalElements)
	}
	if metrics.MaxDensity != 8 || metrics.MinDensity != 0 {
		t.Fatalf("density range = [%d, %d], want [0, 8]", metrics.MinDensity, metrics.MaxDensity)
	}
	if len(metrics.PeakMoments) != 2 {
		t.Fatalf("got %d peaks, want 2: %+v", len(metrics.PeakMoments), metrics.PeakMoments)
	}
	// Peaks come back in time order even though second 6 is the taller one.
	if metrics.PeakMoments[0].Second != 2 || metrics.PeakMoments[1].Second != 6 {
		t.Fatalf("peak seconds = [%d, %d], want [2, 6]",
			metrics.PeakMoments[0].Second, metrics.PeakMoments[1].Second)
	}
	if metrics.PeakMoments[0].Timestamp != "2-3s" {
		t.Errorf("peak timestamp = %q, want 2-3s", metrics.PeakMoments[0].Timestamp)
	}
	if metrics.EmptySeconds != 8 {
		t.Errorf("EmptySeconds = %d, want 8", metrics.EmptySeconds)
	}
}

func TestComputeMalformedKeysInert(t *testing.T) {
	timelines := map[string]timeline.Timeline{
		timeline.KindTextOverlay: {
			"0-1s":     textEntry(2),
			"garbage":  textEntry(9),
			"99-100s":  textEntry(9),
			"-1-0s":    textEntry(9),
			"1.5-2.5s": textEntry(9),
		},
	}
	metrics := Compute(timelines, 5)
	if metrics.TotalElements != 2 {
		t.Fatalf("TotalElements = %d, want 2 (bad keys must not contribute)", metrics.TotalElements)
	}
}

func TestComputeZeroDuration(t *testing.T) {
	metrics := Compute(nil, 0)
	if metrics.TotalElements != 0 || metrics.CreativeDensityScore != 0 {
		t.Fatalf("zero duration should yield zero metrics: %+v", metrics)
	}
	if metrics.PeakMoments == nil || metrics.MLTags == nil {
		t.Fatal("slices should be empty, not nil")
	}
}

func TestComputeElementDistribution(t *testing.T) {
	timelines := map[string]timeline.Timeline{
		timeline.KindTextOverlay: {"0-1s": textEntry(3)},
		timeline.KindGesture:     {"1-2s": {Gestures: []string{"wave", "point"}}},
		timeline.KindExpression:  {"2-3s": {Expression: "happy"}},
		timeline.KindObject:      {"3-4s": {Objects: map[string]int{"person": 2}}},
	}
	metrics := Compute(timelines, 5)
	want := map[string]int{"text": 3, "gesture": 2, "expression": 1, "object": 2}
	for modality, count := range want {
		if metrics.ElementDistribution[modality] != count {
			t.Errorf("distribution[%s] = %d, want %d",
				modality, metrics.ElementDistribution[modality], count)
		}
	}
}

func TestDensityScoreBands(t *testing.T) {
	tests := []struct {
		mean float64
		want float64
	}{
		{mean: 0, want: 0},
		{mean: 0.5, want: 1.5},
		{mean: 1, want: 3},
		{mean: 3, want: 6},
		{mean: 7, want: 10},
		{mean: 20, want: 10},
	}
	for _, tt := range tests {
		if got := densityScore(tt.mean); got != tt.want {
			t.Errorf("densityScore(%v) = %v, want %v", tt.mean, got, tt.want)
		}
	}
}

func TestFrontLoadedPattern(t *testing.T) {
	timelines := map[string]timeline.Timeline{
		timeline.KindTextOverlay: {
			"0-1s": textEntry(4),
			"1-2s": textEntry(4),
			"2-3s": textEntry(4),
		},
	}
	metrics := Compute(timelines, 12)
	if metrics.DensityPattern != "front_loaded" {
		t.Fatalf("DensityPattern = %q, want front_loaded (tags %v)",
			metrics.DensityPattern, metrics.PatternsIdentified)
	}
}
