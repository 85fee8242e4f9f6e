package density

import (
	"fmt"
	"math"
	"sort"

	"clipsight/internal/timeline"
)

const (
	peakLimit         = 10
	surpriseWindow    = 3
	hookWindowSeconds = 3
	peakSeparation    = 8
)

// PeakMoment is one high-density second with its deviation from the local
// neighborhood.
type PeakMoment struct {
	Timestamp     string         `json:"timestamp"`
	Second        int            `json:"second"`
	TotalElements int            `json:"total_elements"`
	SurpriseScore float64        `json:"surprise_score"`
	Breakdown     map[string]int `json:"breakdown"`
}

// Metrics is the density engine's feature object. Field names are a contract
// with downstream consumers.
type Metrics struct {
	CreativeDensityScore float64        `json:"creative_density_score"`
	ElementsPerSecond    float64        `json:"elements_per_second"`
	TotalElements        int            `json:"total_creative_elements"`
	MaxDensity           int            `json:"max_density"`
	MinDensity           int            `json:"min_density"`
	StdDeviation         float64        `json:"std_deviation"`
	ElementDistribution  map[string]int `json:"element_distribution"`
	DensityPattern       string         `json:"density_pattern"`
	PatternsIdentified   []string       `json:"patterns_identified"`
	PeakMoments          []PeakMoment   `json:"peak_density_moments"`
	DensityVolatility    float64        `json:"density_volatility"`
	EmptySeconds         int            `json:"empty_seconds"`
	MLTags               []string       `json:"creative_ml_tags"`
}

// Compute derives density features from the visual timelines. It is a pure
// function: identical inputs produce identical output.
func Compute(timelines map[string]timeline.Timeline, duration float64) Metrics {
	seconds := int(math.Ceil(duration))
	metrics := Metrics{
		ElementDistribution: map[string]int{},
		PatternsIdentified:  []string{},
		PeakMoments:         []PeakMoment{},
		MLTags:              []string{},
		DensityPattern:      "variable",
	}
	if seconds <= 0 {
		return metrics
	}

	counts := make([]int, seconds)
	breakdown := make([]map[string]int, seconds)
	for i := range breakdown {
		breakdown[i] = map[string]int{}
	}

	for modality, kind := range modalityKinds() {
		tl := timelines[kind]
		for key, entry := range tl {
			start, ok := timeline.ParseStart(key)
			if !ok || start < 0 || start >= seconds {
				// Malformed or out-of-range entries are inert.
				continue
			}
			n := elementCount(modality, entry)
			counts[start] += n
			breakdown[start][modality] += n
			metrics.ElementDistribution[modality] += n
		}
	}

	total := 0
	maxCount := 0
	minCount := counts[0]
	empty := 0
	for _, c := range counts {
		total += c
		if c > maxCount {
			maxCount = c
		}
		if c < minCount {
			minCount = c
		}
		if c == 0 {
			empty++
		}
	}
	mean := float64(total) / float64(seconds)
	std := populationStd(counts, mean)

	metrics.TotalElements = total
	metrics.ElementsPerSecond = round2(mean)
	metrics.MaxDensity = maxCount
	metrics.MinDensity = minCount
	metrics.StdDeviation = round3(std)
	metrics.EmptySeconds = empty
	metrics.CreativeDensityScore = round2(densityScore(mean))
	metrics.DensityVolatility = round3(volatility(std, mean))
	metrics.PeakMoments = peakMoments(counts, breakdown, mean, std)

	tags := patternTags(counts, metrics.PeakMoments, mean, std)
	metrics.PatternsIdentified = tags
	metrics.DensityPattern = dominantPattern(tags)
	metrics.MLTags = mlTags(metrics.ElementDistribution, total, mean)
	return metrics
}

func modalityKinds() map[string]string {
	return map[string]string{
		"text":       timeline.KindTextOverlay,
		"sticker":    timeline.KindSticker,
		"gesture":    timeline.KindGesture,
		"expression": timeline.KindExpression,
		"object":     timeline.KindObject,
	}
}

// elementCount returns the number of creative elements one entry contributes.
// An entry with no itemized contents still counts as a single detection.
func elementCount(modality string, entry timeline.Entry) int {
	n := 0
	switch modality {
	case "text":
		n = len(entry.Texts)
	case "sticker":
		n = len(entry.Stickers)
	case "gesture":
		n = len(entry.Gestures)
	case "expression":
		if entry.Expression != "" {
			n = 1
		}
	case "object":
		for _, count := range entry.Objects {
			n += count
		}
		if n == 0 && entry.TotalObjects > 0 {
			n = entry.TotalObjects
		}
	}
	if n <= 0 {
		n = 1
	}
	return n
}

// peakMoments selects the top seconds above the global mean, scores each
// against its ±3s neighborhood, and returns them in time order.
func peakMoments(counts []int, breakdown []map[string]int, mean, std float64) []PeakMoment {
	candidates := make([]int, 0, len(counts))
	for second, count := range counts {
		if float64(count) > mean && count > 0 {
			candidates = append(candidates, second)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > peakLimit {
		candidates = candidates[:peakLimit]
	}
	sort.Ints(candidates)

	peaks := make([]PeakMoment, 0, len(candidates))
	for _, second := range candidates {
		surprise := 0.0
		if std > 0 {
			surprise = (float64(counts[second]) - localMean(counts, second)) / std
		}
		peaks = append(peaks, PeakMoment{
			Timestamp:     fmt.Sprintf("%d-%ds", second, second+1),
			Second:        second,
			TotalElements: counts[second],
			SurpriseScore: round2(surprise),
			Breakdown:     breakdown[second],
		})
	}
	return peaks
}

func localMean(counts []int, center int) float64 {
	lo := center - surpriseWindow
	if lo < 0 {
		lo = 0
	}
	hi := center + surpriseWindow
	if hi > len(counts)-1 {
		hi = len(counts) - 1
	}
	sum := 0
	for i := lo; i <= hi; i++ {
		sum += counts[i]
	}
	return float64(sum) / float64(hi-lo+1)
}

// patternTags derives the mutually non-exclusive boolean tags from fixed
// ratio thresholds.
func patternTags(counts []int, peaks []PeakMoment, mean, std float64) []string {
	var tags []string
	seconds := len(counts)

	hookEnd := hookWindowSeconds
	if hookEnd > seconds {
		hookEnd = seconds
	}
	hookMean := sliceMean(counts[:hookEnd])
	restMean := sliceMean(counts[hookEnd:])
	if hookMean > 0 && hookMean > 1.5*restMean {
		tags = append(tags, "opening_hook")
	}

	third := seconds / 3
	if third > 0 {
		firstMean := sliceMean(counts[:third])
		lastMean := sliceMean(counts[seconds-third:])
		if lastMean > 0 && lastMean > 1.5*firstMean {
			tags = append(tags, "crescendo")
		}
		if firstMean > 0 && firstMean > 1.5*lastMean {
			tags = append(tags, "front_loaded")
		}
	}

	if mean > 0 && std < 0.3*mean {
		tags = append(tags, "consistent")
	}

	separated := separatedPeaks(peaks)
	if separated >= 2 {
		tags = append(tags, "dual_peak")
	}
	if separated >= 3 {
		tags = append(tags, "multi_peak")
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// separatedPeaks counts peaks that stand at least peakSeparation seconds
// apart, greedily from the earliest.
func separatedPeaks(peaks []PeakMoment) int {
	count := 0
	last := -peakSeparation
	for _, peak := range peaks {
		if peak.Second-last >= peakSeparation {
			count++
			last = peak.Second
		}
	}
	return count
}

// dominantPattern picks the single reported pattern by fixed priority:
// front_loaded, then crescendo as back_loaded, then consistent as even,
// then variable.
func dominantPattern(tags []string) string {
	tagged := map[string]bool{}
	for _, tag := range tags {
		tagged[tag] = true
	}
	switch {
	case tagged["front_loaded"]:
		return "front_loaded"
	case tagged["crescendo"]:
		return "back_loaded"
	case tagged["consistent"]:
		return "even"
	default:
		return "variable"
	}
}

// densityScore maps mean density to [0,10] over three linear bands:
// under 1 element/s fills 0-3, 1-3 fills 3-6, and 3-7 fills 6-10.
func densityScore(mean float64) float64 {
	switch {
	case mean <= 0:
		return 0
	case mean < 1:
		return mean * 3
	case mean < 3:
		return 3 + (mean-1)/2*3
	default:
		score := 6 + (mean-3)/4*4
		if score > 10 {
			return 10
		}
		return score
	}
}

func volatility(std, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	v := std / mean
	if v > 1 {
		return 1
	}
	return v
}

func mlTags(distribution map[string]int, total int, mean float64) []string {
	tags := []string{}
	if total > 0 {
		if float64(distribution["text"]) > 0.4*float64(total) {
			tags = append(tags, "text_driven")
		}
		if float64(distribution["gesture"]) > 0.3*float64(total) {
			tags = append(tags, "gesture_rich")
		}
		if float64(distribution["expression"]) > 0.3*float64(total) {
			tags = append(tags, "expression_led")
		}
	}
	if mean > 3 {
		tags = append(tags, "visually_busy")
	} else if mean > 0 && mean < 0.5 {
		tags = append(tags, "sparse_content")
	}
	return tags
}

func sliceMean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func populationStd(values []int, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		diff := float64(v) - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
