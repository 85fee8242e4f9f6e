package speech

import (
	"math"
	"strings"

	"clipsight/internal/timeline"
)

const (
	windowSeconds    = 5
	pauseMinSeconds  = 1.0
	burstRatio       = 1.3
	rapidBurstRatio  = 1.6
	lowConfidence    = 0.6
	frontLoadFrac    = 0.2
	ctaClusterWindow = 5.0
)

// Inputs bundles everything the speech engine reads. Segments need not be
// sorted; the engine sorts them before computing gaps.
type Inputs struct {
	Speech      timeline.Timeline
	Transcript  string
	Segments    []timeline.SpeechSegment
	Expressions timeline.Timeline
	Gestures    timeline.Timeline
	Duration    float64
}

// Burst is a segment delivered noticeably faster than the overall rate.
type Burst struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	WPM   float64 `json:"wpm"`
	Type  string  `json:"type"`
}

// Metrics is the speech engine's feature object.
type Metrics struct {
	WordCount         int     `json:"word_count"`
	TotalSpeakingTime float64 `json:"total_speaking_time"`
	WordsPerMinute    float64 `json:"words_per_minute"`
	SpeechCoverage    float64 `json:"speech_coverage"`
	FirstWordTime     float64 `json:"first_word_time"`
	LastWordTime      float64 `json:"last_word_time"`

	WPMByWindow       []float64 `json:"wpm_by_window"`
	AccelerationScore float64   `json:"acceleration_score"`
	RhythmType        string    `json:"rhythm_type"`
	FrontLoadRatio    float64   `json:"front_load_ratio"`

	Pauses              []Pause `json:"pauses"`
	PauseCount          int     `json:"pause_count"`
	TotalPauseTime      float64 `json:"total_pause_time"`
	LongestPause        float64 `json:"longest_pause"`
	StrategicPauseCount int     `json:"strategic_pause_count"`
	DramaticPauseCount  int     `json:"dramatic_pause_count"`
	AwkwardPauseCount   int     `json:"awkward_pause_count"`

	Hooks       []PhraseMatch `json:"hook_phrases"`
	CTAs        []PhraseMatch `json:"cta_phrases"`
	CTAClusters []CTACluster  `json:"cta_clusters"`

	ConfidenceByWindow []float64                `json:"confidence_by_window"`
	FillerRatio        float64                  `json:"filler_ratio"`
	MumblingSegments   []timeline.SpeechSegment `json:"mumbling_segments"`

	DirectAddressCount int      `json:"direct_address_count"`
	InclusiveRatio     float64  `json:"inclusive_language_ratio"`
	RepeatedPhrases    []string `json:"repeated_phrases"`
	QuestionCount      int      `json:"question_count"`

	Bursts       []Burst `json:"speech_bursts"`
	BurstPattern string  `json:"burst_pattern"`

	GestureSyncRatio        float64                  `json:"gesture_sync_ratio"`
	FaceOnScreenRatio       float64                  `json:"face_on_screen_during_speech"`
	OffCameraSegments       []timeline.SpeechSegment `json:"off_camera_segments"`
	ExpressionVariety       int                      `json:"expression_variety_during_speech"`
	HookEffectiveness       float64                  `json:"hook_effectiveness_score"`
	CTAEffectiveness        float64                  `json:"cta_effectiveness_score"`
	DeliveryConfidence      float64                  `json:"delivery_confidence_score"`
	AuthenticityScore       float64                  `json:"authenticity_score"`
	VerbalEngagementScore   float64                  `json:"verbal_engagement_score"`
	VisualVerbalHarmony     float64                  `json:"visual_verbal_harmony_score"`
}

// Compute derives every speech feature in one pass over sorted segments.
// Pure function of its inputs.
func Compute(in Inputs) Metrics {
	metrics := Metrics{
		WPMByWindow:        []float64{},
		Pauses:             []Pause{},
		Hooks:              []PhraseMatch{},
		CTAs:               []PhraseMatch{},
		CTAClusters:        []CTACluster{},
		ConfidenceByWindow: []float64{},
		MumblingSegments:   []timeline.SpeechSegment{},
		RepeatedPhrases:    []string{},
		Bursts:             []Burst{},
		OffCameraSegments:  []timeline.SpeechSegment{},
		RhythmType:         "staccato",
		BurstPattern:       "none",
	}
	segments := timeline.SortSegments(in.Segments)
	words := strings.Fields(in.Transcript)
	metrics.WordCount = len(words)

	var speaking float64
	for _, seg := range segments {
		if seg.End > seg.Start {
			speaking += seg.End - seg.Start
		}
	}
	metrics.TotalSpeakingTime = round2(speaking)
	if speaking > 0 {
		metrics.WordsPerMinute = round2(float64(metrics.WordCount) / speaking * 60)
	}
	if in.Duration > 0 {
		metrics.SpeechCoverage = round3(math.Min(1, speaking/in.Duration))
	}
	if len(segments) > 0 {
		metrics.FirstWordTime = round2(segments[0].Start)
		metrics.LastWordTime = round2(segments[len(segments)-1].End)
	}

	windowCounts := wordsPerWindow(segments, in.Duration)
	for _, count := range windowCounts {
		// Each window is 5s, so words*12 is the per-window rate in wpm.
		metrics.WPMByWindow = append(metrics.WPMByWindow, round2(count*60/windowSeconds))
	}
	metrics.AccelerationScore = round3(wordAcceleration(windowCounts))
	metrics.RhythmType = classifyRhythm(metrics.WPMByWindow, metrics.AccelerationScore)
	metrics.FrontLoadRatio = round3(frontLoadRatio(segments, in.Duration))

	metrics.Pauses = detectPauses(segments)
	metrics.PauseCount = len(metrics.Pauses)
	for _, pause := range metrics.Pauses {
		metrics.TotalPauseTime += pause.Duration
		if pause.Duration > metrics.LongestPause {
			metrics.LongestPause = pause.Duration
		}
		switch pause.Type {
		case PauseStrategic:
			metrics.StrategicPauseCount++
		case PauseDramatic:
			metrics.DramaticPauseCount++
		case PauseAwkward:
			metrics.AwkwardPauseCount++
		}
	}
	metrics.TotalPauseTime = round2(metrics.TotalPauseTime)
	metrics.LongestPause = round2(metrics.LongestPause)

	metrics.Hooks = findPhrases(in.Transcript, hookPatterns, metrics.WordCount, speaking, metrics.FirstWordTime)
	metrics.CTAs = findPhrases(in.Transcript, ctaPatterns, metrics.WordCount, speaking, metrics.FirstWordTime)
	metrics.CTAClusters = clusterCTAs(metrics.CTAs)

	metrics.ConfidenceByWindow = confidenceByWindow(segments, in.Duration)
	metrics.FillerRatio = round3(fillerRatio(words))
	for _, seg := range segments {
		if seg.Confidence > 0 && seg.Confidence < lowConfidence {
			metrics.MumblingSegments = append(metrics.MumblingSegments, seg)
		}
	}

	metrics.DirectAddressCount = countLexicon(words, directAddressWords)
	metrics.InclusiveRatio = round3(inclusiveRatio(words))
	metrics.RepeatedPhrases = repeatedPhrases(words)
	metrics.QuestionCount = countQuestions(in.Transcript)

	metrics.Bursts, metrics.BurstPattern = detectBursts(segments, metrics.WordsPerMinute, in.Duration)

	applySync(&metrics, segments, in)
	applyScores(&metrics, in)
	return metrics
}

// wordsPerWindow apportions each segment's word count across fixed windows
// proportionally to overlap duration.
func wordsPerWindow(segments []timeline.SpeechSegment, duration float64) []float64 {
	if duration <= 0 {
		return nil
	}
	windows := int(math.Ceil(duration / windowSeconds))
	counts := make([]float64, windows)
	for _, seg := range segments {
		segWords := float64(len(strings.Fields(seg.Text)))
		segDur := seg.End - seg.Start
		if segWords == 0 || segDur <= 0 {
			continue
		}
		for w := 0; w < windows; w++ {
			from := float64(w * windowSeconds)
			to := from + windowSeconds
			overlap := math.Min(seg.End, to) - math.Max(seg.Start, from)
			if overlap > 0 {
				counts[w] += segWords * overlap / segDur
			}
		}
	}
	return counts
}

// wordAcceleration mirrors the pacing engine's half-to-half comparison on
// window word counts, with the same zero-denominator edge rule.
func wordAcceleration(windowCounts []float64) float64 {
	if len(windowCounts) == 0 {
		return 0
	}
	half := len(windowCounts) / 2
	var first, second float64
	for i, count := range windowCounts {
		if i < half {
			first += count
		} else {
			second += count
		}
	}
	if first == 0 {
		if second == 0 {
			return 0
		}
		return 1
	}
	return (second - first) / first
}

func classifyRhythm(wpmWindows []float64, acceleration float64) string {
	nonzero := make([]float64, 0, len(wpmWindows))
	for _, wpm := range wpmWindows {
		if wpm > 0 {
			nonzero = append(nonzero, wpm)
		}
	}
	if len(nonzero) == 0 {
		return "staccato"
	}
	m := mean(nonzero)
	cv := 0.0
	if m > 0 {
		cv = populationStd(nonzero) / m
	}
	switch {
	case acceleration > 0.3:
		return "building"
	case cv < 0.3:
		return "flowing"
	case cv > 0.8:
		return "erratic"
	default:
		return "staccato"
	}
}

func frontLoadRatio(segments []timeline.SpeechSegment, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	cutoff := duration * frontLoadFrac
	var front, total float64
	for _, seg := range segments {
		segWords := float64(len(strings.Fields(seg.Text)))
		segDur := seg.End - seg.Start
		if segWords == 0 || segDur <= 0 {
			continue
		}
		total += segWords
		overlap := math.Min(seg.End, cutoff) - seg.Start
		if overlap > 0 {
			front += segWords * overlap / segDur
		}
	}
	if total == 0 {
		return 0
	}
	return front / total
}

func confidenceByWindow(segments []timeline.SpeechSegment, duration float64) []float64 {
	if duration <= 0 {
		return []float64{}
	}
	windows := int(math.Ceil(duration / windowSeconds))
	out := make([]float64, windows)
	for w := 0; w < windows; w++ {
		from := float64(w * windowSeconds)
		to := from + windowSeconds
		var sum float64
		count := 0
		for _, seg := range segments {
			if seg.Start < to && seg.End > from {
				sum += seg.Confidence
				count++
			}
		}
		if count > 0 {
			out[w] = round3(sum / float64(count))
		}
	}
	return out
}

func detectBursts(segments []timeline.SpeechSegment, overallWPM, duration float64) ([]Burst, string) {
	bursts := []Burst{}
	if overallWPM <= 0 {
		return bursts, "none"
	}
	var midpointSum float64
	for _, seg := range segments {
		segDur := seg.End - seg.Start
		segWords := float64(len(strings.Fields(seg.Text)))
		if segDur <= 0 || segWords == 0 {
			continue
		}
		wpm := segWords / segDur * 60
		if wpm <= burstRatio*overallWPM {
			continue
		}
		kind := "energetic"
		if wpm > rapidBurstRatio*overallWPM {
			kind = "rapid"
		}
		bursts = append(bursts, Burst{
			Start: round2(seg.Start),
			End:   round2(seg.End),
			WPM:   round2(wpm),
			Type:  kind,
		})
		midpointSum += (seg.Start + seg.End) / 2
	}
	if len(bursts) == 0 || duration <= 0 {
		return bursts, "none"
	}
	relative := midpointSum / float64(len(bursts)) / duration
	switch {
	case relative < 0.33:
		return bursts, "front_loaded"
	case relative > 0.66:
		return bursts, "climax"
	default:
		return bursts, "distributed"
	}
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

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
