package pacing

import (
	"fmt"
	"math"
	"sort"

	"clipsight/internal/timeline"
)

const (
	montageShotSeconds = 1.5
	montageMinRun      = 3
	curveWindowSeconds = 10
	denseZoneRatio     = 0.8

	shortShotSeconds = 2.0
	longShotSeconds  = 5.0

	slowCutsPerMinute     = 10.0
	moderateCutsPerMinute = 20.0
	fastCutsPerMinute     = 40.0

	consistentRhythm = 0.7
	variedRhythm     = 0.4
)

// MontageSegment is a run of at least three consecutive sub-1.5s shots.
type MontageSegment struct {
	StartSecond float64 `json:"start_second"`
	EndSecond   float64 `json:"end_second"`
	ShotCount   int     `json:"shot_count"`
}

// Metrics is the pacing engine's feature object.
type Metrics struct {
	TotalShots           int              `json:"total_shots"`
	AvgShotDuration      float64          `json:"avg_shot_duration"`
	ShortestShot         float64          `json:"shortest_shot"`
	LongestShot          float64          `json:"longest_shot"`
	ShotDurationVariance float64          `json:"shot_duration_variance"`
	CutFrequency         float64          `json:"cut_frequency"`
	PacingClassification string           `json:"pacing_classification"`
	ShotHistogram        map[string]int   `json:"shot_histogram"`
	RhythmConsistency    string           `json:"rhythm_consistency"`
	MontageSegments      []MontageSegment `json:"montage_segments"`
	AccelerationScore    float64          `json:"acceleration_score"`
	PacingCurve          map[string]int   `json:"pacing_curve"`
	CutDensityZones      []string         `json:"cut_density_zones"`
	IntroPacing          int              `json:"intro_pacing"`
	OutroPacing          int              `json:"outro_pacing"`
	VisualLoadPerScene   float64          `json:"visual_load_per_scene"`
	ShotTypeChanges      int              `json:"shot_type_changes"`
	PacingTags           []string         `json:"pacing_tags"`
}

// Compute derives pacing features from the scene-change timeline. The object
// and camera-distance timelines are optional correlates and may be nil.
func Compute(scenes timeline.Timeline, duration float64, objects, camera timeline.Timeline) Metrics {
	metrics := Metrics{
		ShotHistogram:        map[string]int{"short": 0, "medium": 0, "long": 0},
		MontageSegments:      []MontageSegment{},
		PacingCurve:          map[string]int{},
		CutDensityZones:      []string{},
		PacingTags:           []string{},
		PacingClassification: "slow",
		RhythmConsistency:    "consistent",
	}
	if duration <= 0 {
		return metrics
	}

	cuts := sortedCutStarts(scenes, duration)
	shots := shotDurations(cuts, duration)
	metrics.TotalShots = len(shots)

	if len(shots) > 0 {
		metrics.AvgShotDuration = round2(mean(shots))
		metrics.ShortestShot = round2(minOf(shots))
		metrics.LongestShot = round2(maxOf(shots))
		metrics.ShotDurationVariance = round3(populationVariance(shots))
		for _, d := range shots {
			switch {
			case d < shortShotSeconds:
				metrics.ShotHistogram["short"]++
			case d < longShotSeconds:
				metrics.ShotHistogram["medium"]++
			default:
				metrics.ShotHistogram["long"]++
			}
		}
	}

	metrics.CutFrequency = round2(float64(len(cuts)) / duration * 60)
	metrics.PacingClassification = classifyPace(metrics.CutFrequency)
	metrics.RhythmConsistency = classifyRhythm(shots)
	metrics.MontageSegments = montageSegments(cuts, shots)
	metrics.AccelerationScore = round3(accelerationScore(cuts, duration))
	metrics.PacingCurve = pacingCurve(cuts, duration)
	metrics.CutDensityZones = denseZones(metrics.PacingCurve)
	metrics.IntroPacing = cutsWithin(cuts, 0, curveWindowSeconds)
	metrics.OutroPacing = cutsWithin(cuts, duration-curveWindowSeconds, duration+1)
	metrics.VisualLoadPerScene = round2(visualLoad(cuts, duration, objects))
	metrics.ShotTypeChanges = shotTypeChanges(camera)
	metrics.PacingTags = pacingTags(metrics)
	return metrics
}

// sortedCutStarts extracts scene-change start seconds within the video and
// orders them ascending. Malformed keys are inert.
func sortedCutStarts(scenes timeline.Timeline, duration float64) []float64 {
	starts := make([]float64, 0, len(scenes))
	for key := range scenes {
		start, ok := timeline.ParseStart(key)
		if !ok || float64(start) >= duration {
			continue
		}
		starts = append(starts, float64(start))
	}
	sort.Float64s(starts)
	return starts
}

// shotDurations converts cut starts to shot lengths; the last shot extends to
// the end of the video.
func shotDurations(cuts []float64, duration float64) []float64 {
	if len(cuts) == 0 {
		return nil
	}
	shots := make([]float64, 0, len(cuts))
	for i := 1; i < len(cuts); i++ {
		shots = append(shots, cuts[i]-cuts[i-1])
	}
	shots = append(shots, duration-cuts[len(cuts)-1])
	return shots
}

func classifyPace(cutsPerMinute float64) string {
	switch {
	case cutsPerMinute < slowCutsPerMinute:
		return "slow"
	case cutsPerMinute < moderateCutsPerMinute:
		return "moderate"
	case cutsPerMinute < fastCutsPerMinute:
		return "fast"
	default:
		return "very_fast"
	}
}

// classifyRhythm bands 1/(1+stdev) of shot durations at 0.7 and 0.4.
func classifyRhythm(shots []float64) string {
	if len(shots) == 0 {
		return "consistent"
	}
	score := 1 / (1 + math.Sqrt(populationVariance(shots)))
	switch {
	case score >= consistentRhythm:
		return "consistent"
	case score >= variedRhythm:
		return "varied"
	default:
		return "erratic"
	}
}

func montageSegments(cuts, shots []float64) []MontageSegment {
	segments := []MontageSegment{}
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && end-runStart >= montageMinRun {
			segments = append(segments, MontageSegment{
				StartSecond: cuts[runStart],
				EndSecond:   cuts[runStart] + sum(shots[runStart:end]),
				ShotCount:   end - runStart,
			})
		}
		runStart = -1
	}
	for i, d := range shots {
		if d < montageShotSeconds {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(shots))
	return segments
}

// accelerationScore compares cut counts between the two halves. A zero first
// half yields exactly 0 when the second half is also empty and exactly 1 when
// it is not, so the score never divides by zero.
func accelerationScore(cuts []float64, duration float64) float64 {
	half := duration / 2
	first := 0
	second := 0
	for _, cut := range cuts {
		if cut < half {
			first++
		} else {
			second++
		}
	}
	if first == 0 {
		if second == 0 {
			return 0
		}
		return 1
	}
	return float64(second-first) / float64(first)
}

func pacingCurve(cuts []float64, duration float64) map[string]int {
	windows := int(math.Ceil(duration / curveWindowSeconds))
	curve := make(map[string]int, windows)
	for w := 0; w < windows; w++ {
		from := w * curveWindowSeconds
		to := (w + 1) * curveWindowSeconds
		curve[fmt.Sprintf("%d-%ds", from, to)] = cutsWithin(cuts, float64(from), float64(to))
	}
	return curve
}

func denseZones(curve map[string]int) []string {
	peak := 0
	for _, count := range curve {
		if count > peak {
			peak = count
		}
	}
	zones := []string{}
	if peak == 0 {
		return zones
	}
	threshold := denseZoneRatio * float64(peak)
	labels := make([]string, 0, len(curve))
	for label := range curve {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		si, _ := timeline.ParseStart(labels[i])
		sj, _ := timeline.ParseStart(labels[j])
		return si < sj
	})
	for _, label := range labels {
		if float64(curve[label]) >= threshold {
			zones = append(zones, label)
		}
	}
	return zones
}

func cutsWithin(cuts []float64, from, to float64) int {
	count := 0
	for _, cut := range cuts {
		if cut >= from && cut < to {
			count++
		}
	}
	return count
}

// visualLoad averages object detections per shot across the video.
func visualLoad(cuts []float64, duration float64, objects timeline.Timeline) float64 {
	if len(cuts) == 0 || len(objects) == 0 {
		return 0
	}
	shotCount := len(cuts)
	total := 0
	for key, entry := range objects {
		start, ok := timeline.ParseStart(key)
		if !ok || float64(start) >= duration {
			continue
		}
		for _, count := range entry.Objects {
			total += count
		}
	}
	return float64(total) / float64(shotCount)
}

func shotTypeChanges(camera timeline.Timeline) int {
	type labeled struct {
		start int
		label string
	}
	entries := make([]labeled, 0, len(camera))
	for key, entry := range camera {
		start, ok := timeline.ParseStart(key)
		if !ok || entry.Distance == "" {
			continue
		}
		entries = append(entries, labeled{start: start, label: entry.Distance})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].start < entries[j].start })
	changes := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].label != entries[i-1].label {
			changes++
		}
	}
	return changes
}

func pacingTags(metrics Metrics) []string {
	tags := []string{}
	if metrics.TotalShots > 0 && metrics.AvgShotDuration < montageShotSeconds {
		tags = append(tags, "mtv_style")
	}
	if metrics.PacingClassification == "fast" || metrics.PacingClassification == "very_fast" {
		tags = append(tags, "quick_cuts")
	}
	if len(metrics.MontageSegments) > 0 {
		tags = append(tags, "has_montage_sections")
	}
	if metrics.AccelerationScore > 0.3 {
		tags = append(tags, "accelerating_pace")
	} else if metrics.AccelerationScore < -0.3 {
		tags = append(tags, "decelerating_pace")
	}
	if metrics.RhythmConsistency == "consistent" && metrics.TotalShots > 1 {
		tags = append(tags, "steady_rhythm")
	}
	return tags
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var total float64
	for _, v := range values {
		diff := v - m
		total += diff * diff
	}
	return total / float64(len(values))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
