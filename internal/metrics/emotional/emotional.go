package emotional

import (
	"math"
	"sort"

	"clipsight/internal/timeline"
)

const (
	// DefaultSampleInterval is the window width in seconds.
	DefaultSampleInterval = 5
	// DefaultIntensityThreshold is the |valence| above which a window counts
	// as an emotional peak.
	DefaultIntensityThreshold = 0.6

	trajectoryDelta = 0.3
	uShapeDelta     = 0.2
	peakLimit       = 5
)

// valenceLexicon maps raw expression labels to a scalar in [-1, 1].
// Unknown labels read as neutral.
var valenceLexicon = map[string]float64{
	"joy":      0.8,
	"excited":  0.9,
	"happy":    0.7,
	"surprise": 0.4,
	"calm":     0.1,
	"neutral":  0,
	"sadness":  -0.6,
	"disgust":  -0.5,
	"anger":    -0.7,
	"fear":     -0.8,
}

// gestureCompatibility lists gestures that reinforce an expressed emotion.
var gestureCompatibility = map[string][]string{
	"joy":      {"thumbs_up", "victory", "clap", "heart", "ok"},
	"excited":  {"thumbs_up", "victory", "clap", "wave", "raised_hands"},
	"happy":    {"thumbs_up", "victory", "clap", "heart", "wave"},
	"surprise": {"open_palm", "raised_hands", "point"},
	"sadness":  {"thumbs_down"},
	"anger":    {"fist", "thumbs_down", "stop"},
}

// Peak is one window whose valence magnitude crossed the intensity threshold.
type Peak struct {
	Window    int     `json:"window"`
	StartTime float64 `json:"start_time"`
	Emotion   string  `json:"emotion"`
	Valence   float64 `json:"valence"`
	Intensity float64 `json:"intensity"`
}

// Metrics is the emotional engine's feature object.
type Metrics struct {
	SampledEmotions      []string                      `json:"sampled_emotions"`
	ValenceSequence      []float64                     `json:"valence_sequence"`
	DominantEmotion      string                        `json:"dominant_emotion"`
	Trajectory           string                        `json:"trajectory"`
	Variability          float64                       `json:"emotional_variability"`
	Peaks                []Peak                        `json:"emotional_peaks"`
	GestureAlignment     float64                       `json:"gesture_alignment_ratio"`
	ChangeRate           float64                       `json:"change_rate"`
	Diversity            float64                       `json:"emotion_diversity"`
	TransitionMatrix     map[string]map[string]float64 `json:"transition_matrix"`
	PeakRhythmRegularity float64                       `json:"peak_rhythm_regularity"`
}

// Options tune the sampling windows and peak threshold.
type Options struct {
	SampleInterval     int
	IntensityThreshold float64
}

func (o Options) withDefaults() Options {
	if o.SampleInterval <= 0 {
		o.SampleInterval = DefaultSampleInterval
	}
	if o.IntensityThreshold <= 0 {
		o.IntensityThreshold = DefaultIntensityThreshold
	}
	return o
}

// Compute derives the emotional trajectory features. Pure function; malformed
// timeline keys are skipped.
func Compute(expressions, speech, gestures timeline.Timeline, duration float64, opts Options) Metrics {
	opts = opts.withDefaults()
	metrics := Metrics{
		SampledEmotions:  []string{},
		ValenceSequence:  []float64{},
		Peaks:            []Peak{},
		TransitionMatrix: map[string]map[string]float64{},
		DominantEmotion:  "neutral",
		Trajectory:       "flat",
	}
	if duration <= 0 {
		return metrics
	}

	windows := int(math.Ceil(duration / float64(opts.SampleInterval)))
	labels := make([]string, windows)
	valences := make([]float64, windows)
	for w := 0; w < windows; w++ {
		labels[w] = dominantLabel(expressions, w*opts.SampleInterval, (w+1)*opts.SampleInterval)
		valences[w] = Valence(labels[w])
	}
	metrics.SampledEmotions = labels
	for _, v := range valences {
		metrics.ValenceSequence = append(metrics.ValenceSequence, round2(v))
	}

	metrics.DominantEmotion = modeLabel(labels)
	metrics.Variability = round3(populationStd(valences))
	metrics.Peaks = findPeaks(labels, valences, opts)
	metrics.Trajectory = classifyTrajectory(valences)
	metrics.GestureAlignment = round3(gestureAlignment(labels, gestures, opts.SampleInterval))
	metrics.ChangeRate = round3(changeRate(valences))
	metrics.Diversity = round3(diversity(labels))
	metrics.TransitionMatrix = transitionMatrix(labels)
	metrics.PeakRhythmRegularity = round3(peakRegularity(metrics.Peaks))
	return metrics
}

// Valence maps an expression label to its scalar value. Unknown labels score
// neutral so a detector emitting a new label does not skew the arc.
func Valence(label string) float64 {
	return valenceLexicon[label]
}

// dominantLabel majority-votes detections whose interval start falls inside
// [from, to); ties break alphabetically for determinism.
func dominantLabel(expressions timeline.Timeline, from, to int) string {
	votes := map[string]int{}
	for key, entry := range expressions {
		start, ok := timeline.ParseStart(key)
		if !ok || start < from || start >= to {
			continue
		}
		if entry.Expression != "" {
			votes[entry.Expression]++
		}
	}
	if len(votes) == 0 {
		return "neutral"
	}
	best := ""
	bestCount := 0
	labels := make([]string, 0, len(votes))
	for label := range votes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if votes[label] > bestCount {
			best = label
			bestCount = votes[label]
		}
	}
	return best
}

func modeLabel(labels []string) string {
	if len(labels) == 0 {
		return "neutral"
	}
	counts := map[string]int{}
	for _, label := range labels {
		counts[label]++
	}
	unique := make([]string, 0, len(counts))
	for label := range counts {
		unique = append(unique, label)
	}
	sort.Strings(unique)
	best := unique[0]
	for _, label := range unique {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return best
}

func findPeaks(labels []string, valences []float64, opts Options) []Peak {
	peaks := []Peak{}
	for w, v := range valences {
		if math.Abs(v) > opts.IntensityThreshold {
			peaks = append(peaks, Peak{
				Window:    w,
				StartTime: float64(w * opts.SampleInterval),
				Emotion:   labels[w],
				Valence:   round2(v),
				Intensity: round2(math.Abs(v)),
			})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Intensity > peaks[j].Intensity })
	if len(peaks) > peakLimit {
		peaks = peaks[:peakLimit]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Window < peaks[j].Window })
	return peaks
}

// classifyTrajectory compares the first, middle, and last third means of the
// valence sequence against fixed deltas.
func classifyTrajectory(valences []float64) string {
	if len(valences) < 3 {
		return "flat"
	}
	third := len(valences) / 3
	start := mean(valences[:third])
	middle := mean(valences[third : len(valences)-third])
	end := mean(valences[len(valences)-third:])

	switch {
	case end-start > trajectoryDelta:
		return "ascending"
	case start-end > trajectoryDelta:
		return "descending"
	case middle < math.Min(start, end)-uShapeDelta:
		return "u_shaped"
	default:
		return "flat"
	}
}

// gestureAlignment scores co-occurring emotion/gesture pairs against the
// compatibility table. Returns 0 when no pairs co-occur.
func gestureAlignment(labels []string, gestures timeline.Timeline, interval int) float64 {
	pairs := 0
	matches := 0
	for key, entry := range gestures {
		start, ok := timeline.ParseStart(key)
		if !ok {
			continue
		}
		window := start / interval
		if window < 0 || window >= len(labels) {
			continue
		}
		emotion := labels[window]
		compatible := gestureCompatibility[emotion]
		for _, gesture := range entry.Gestures {
			pairs++
			for _, want := range compatible {
				if gesture == want {
					matches++
					break
				}
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(matches) / float64(pairs)
}

func changeRate(valences []float64) float64 {
	if len(valences) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(valences); i++ {
		sum += math.Abs(valences[i] - valences[i-1])
	}
	return sum / float64(len(valences)-1)
}

func diversity(labels []string) float64 {
	unique := map[string]struct{}{}
	for _, label := range labels {
		unique[label] = struct{}{}
	}
	return float64(len(unique)) / float64(len(valenceLexicon))
}

// transitionMatrix normalizes bigram counts row-wise.
func transitionMatrix(labels []string) map[string]map[string]float64 {
	counts := map[string]map[string]int{}
	totals := map[string]int{}
	for i := 1; i < len(labels); i++ {
		from, to := labels[i-1], labels[i]
		if counts[from] == nil {
			counts[from] = map[string]int{}
		}
		counts[from][to]++
		totals[from]++
	}
	matrix := make(map[string]map[string]float64, len(counts))
	for from, row := range counts {
		matrix[from] = make(map[string]float64, len(row))
		for to, n := range row {
			matrix[from][to] = round3(float64(n) / float64(totals[from]))
		}
	}
	return matrix
}

// peakRegularity is bounded to (0, 1]: 1/(1+cv) over inter-peak spacing,
// where cv is the coefficient of variation. Fewer than two peaks yield 0.
func peakRegularity(peaks []Peak) float64 {
	if len(peaks) < 2 {
		return 0
	}
	spacings := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		spacings = append(spacings, peaks[i].StartTime-peaks[i-1].StartTime)
	}
	m := mean(spacings)
	if m <= 0 {
		return 0
	}
	cv := populationStd(spacings) / m
	return 1 / (1 + cv)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
