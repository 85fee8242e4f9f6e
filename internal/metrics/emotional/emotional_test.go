package emotional

import (
	"testing"

	"clipsight/internal/timeline"
)

func TestClassifyTrajectory(t *testing.T) {
	tests := []struct {
		name     string
		valences []float64
		want     string
	}{
		{name: "ascending", valences: []float64{-0.8, -0.8, -0.1, 0.1, 0.8, 0.8}, want: "ascending"},
		{name: "descending", valences: []float64{0.8, 0.8, 0.1, -0.1, -0.8, -0.8}, want: "descending"},
		{name: "u shaped", valences: []float64{0.7, 0.7, -0.5, -0.5, 0.7, 0.7}, want: "u_shaped"},
		{name: "flat", valences: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, want: "flat"},
		{name: "too short", valences: []float64{-1, 1}, want: "flat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrajectory(tt.valences); got != tt.want {
				t.Fatalf("classifyTrajectory(%v) = %q, want %q", tt.valences, got, tt.want)
			}
		})
	}
}

func TestComputeAscendingArc(t *testing.T) {
	// Sadness in the first half, joy in the second, 5s windows over 30s.
	expressions := timeline.Timeline{
		"1-2s":   {Expression: "sadness"},
		"6-7s":   {Expression: "sadness"},
		"11-12s": {Expression: "neutral"},
		"16-17s": {Expression: "happy"},
		"21-22s": {Expression: "joy"},
		"26-27s": {Expression: "joy"},
	}
	metrics := Compute(expressions, nil, nil, 30, Options{})

	if metrics.Trajectory != "ascending" {
		t.Fatalf("Trajectory = %q, want ascending (valences %v)",
			metrics.Trajectory, metrics.ValenceSequence)
	}
	if len(metrics.SampledEmotions) != 6 {
		t.Fatalf("got %d windows, want 6", len(metrics.SampledEmotions))
	}
	if metrics.SampledEmotions[0] != "sadness" || metrics.SampledEmotions[5] != "joy" {
		t.Fatalf("sampled emotions = %v", metrics.SampledEmotions)
	}
}

func TestComputePeaksOrderedByTime(t *testing.T) {
	expressions := timeline.Timeline{
		"1-2s":   {Expression: "joy"},  // valence 0.8
		"11-12s": {Expression: "fear"}, // valence -0.8
	}
	metrics := Compute(expressions, nil, nil, 15, Options{})
	if len(metrics.Peaks) != 2 {
		t.Fatalf("got %d peaks, want 2: %+v", len(metrics.Peaks), metrics.Peaks)
	}
	if metrics.Peaks[0].Window != 0 || metrics.Peaks[1].Window != 2 {
		t.Fatalf("peak windows = [%d, %d], want [0, 2]",
			metrics.Peaks[0].Window, metrics.Peaks[1].Window)
	}
	if metrics.Peaks[1].Intensity != 0.8 {
		t.Errorf("negative valence should report positive intensity, got %v", metrics.Peaks[1].Intensity)
	}
}

func TestValenceUnknownLabelNeutral(t *testing.T) {
	if got := Valence("bewilderment"); got != 0 {
		t.Fatalf("unknown label valence = %v, want 0", got)
	}
}

func TestDominantLabelTieBreaksAlphabetically(t *testing.T) {
	expressions := timeline.Timeline{
		"0-1s": {Expression: "joy"},
		"1-2s": {Expression: "anger"},
	}
	if got := dominantLabel(expressions, 0, 5); got != "anger" {
		t.Fatalf("dominantLabel = %q, want anger on tie", got)
	}
}

func TestGestureAlignment(t *testing.T) {
	expressions := timeline.Timeline{
		"0-1s": {Expression: "joy"},
	}
	gestures := timeline.Timeline{
		"1-2s": {Gestures: []string{"thumbs_up", "point"}},
	}
	metrics := Compute(expressions, nil, gestures, 5, Options{})
	if metrics.GestureAlignment != 0.5 {
		t.Fatalf("GestureAlignment = %v, want 0.5", metrics.GestureAlignment)
	}
}

func TestComputeZeroDuration(t *testing.T) {
	metrics := Compute(nil, nil, nil, 0, Options{})
	if metrics.Trajectory != "flat" || metrics.DominantEmotion != "neutral" {
		t.Fatalf("zero duration should yield neutral defaults: %+v", metrics)
	}
}
