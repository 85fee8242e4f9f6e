package framing

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"clipsight/internal/timeline"
)

const (
	introWindowSeconds = 3
	strongPresence     = 0.7
	minimalPresence    = 0.3
	stableVolatility   = 0.2
	dynamicVolatility  = 0.6
	cutawayThreshold   = 5
)

// AbsenceSegment is a contiguous run of seconds with nobody on screen.
type AbsenceSegment struct {
	Start    int `json:"start"`
	End      int `json:"end"`
	Duration int `json:"duration"`
}

// EnhancedData is an optional richer external human-analysis summary. Any
// non-nil field overrides the locally computed value.
type EnhancedData struct {
	FaceScreenTimeRatio   *float64 `json:"face_screen_time_ratio,omitempty"`
	PersonScreenTimeRatio *float64 `json:"person_screen_time_ratio,omitempty"`
	DominantShotType      *string  `json:"dominant_shot_type,omitempty"`
	FramingVolatility     *float64 `json:"framing_volatility,omitempty"`
}

// Inputs bundles the timelines and optional hints the engine reads.
type Inputs struct {
	Expressions    timeline.Timeline
	Objects        timeline.Timeline
	CameraDistance timeline.Timeline
	Enhanced       *EnhancedData
	ActionHints    []string
	Duration       float64
}

// InputsFromDocument assembles engine inputs from a unified analysis
// document, decoding the optional enhanced human analysis block and action
// hints carried in the metadata summary.
func InputsFromDocument(doc *timeline.Document) Inputs {
	if doc == nil {
		return Inputs{}
	}
	return Inputs{
		Expressions:    doc.Timeline(timeline.KindExpression),
		Objects:        doc.Timeline(timeline.KindObject),
		CameraDistance: doc.Timeline(timeline.KindCameraDistance),
		Enhanced:       decodeEnhanced(doc.MetadataSummary["enhanced_human_analysis"]),
		ActionHints:    decodeActionHints(doc.MetadataSummary["action_hints"]),
		Duration:       doc.DurationSeconds,
	}
}

func decodeEnhanced(value any) *EnhancedData {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var enhanced EnhancedData
	if err := json.Unmarshal(raw, &enhanced); err != nil {
		return nil
	}
	if enhanced == (EnhancedData{}) {
		return nil
	}
	return &enhanced
}

func decodeActionHints(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	hints := make([]string, 0, len(items))
	for _, item := range items {
		if hint, ok := item.(string); ok && strings.TrimSpace(hint) != "" {
			hints = append(hints, hint)
		}
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

// Metrics is the framing engine's feature object.
type Metrics struct {
	FaceScreenTimeRatio   float64          `json:"face_screen_time_ratio"`
	PersonScreenTimeRatio float64          `json:"person_screen_time_ratio"`
	ShotDistribution      map[string]int   `json:"shot_distribution"`
	DominantShotType      string           `json:"dominant_shot_type"`
	IntroShotType         string           `json:"intro_shot_type"`
	FramingVolatility     float64          `json:"framing_volatility"`
	AbsenceSegments       []AbsenceSegment `json:"absence_segments"`
	AbsenceCount          int              `json:"absence_count"`
	LongestAbsenceSeconds int              `json:"longest_absence_seconds"`
	FramingPatterns       []string         `json:"framing_patterns"`
	TemporalEvolution     string           `json:"temporal_evolution"`
	InferredIntent        string           `json:"inferred_intent"`
	IntentAlignmentRisk   string           `json:"intent_alignment_risk"`
	RiskFactors           []string         `json:"risk_factors"`
}

// Compute derives framing features. Pure function; malformed keys are inert.
func Compute(in Inputs) Metrics {
	metrics := Metrics{
		ShotDistribution:    map[string]int{"close": 0, "medium": 0, "far": 0},
		AbsenceSegments:     []AbsenceSegment{},
		FramingPatterns:     []string{},
		RiskFactors:         []string{},
		DominantShotType:    "unknown",
		IntroShotType:       "unknown",
		TemporalEvolution:   "no_camera_data",
		InferredIntent:      "entertainment",
		IntentAlignmentRisk: "low",
	}
	seconds := int(math.Ceil(in.Duration))
	if seconds <= 0 {
		return metrics
	}

	facePresent, personPresent := presenceArrays(in.Expressions, in.Objects, seconds)
	metrics.FaceScreenTimeRatio = round3(ratio(facePresent))
	metrics.PersonScreenTimeRatio = round3(ratio(personPresent))

	distances := sortedDistances(in.CameraDistance)
	for _, d := range distances {
		metrics.ShotDistribution[d.label]++
	}
	metrics.DominantShotType = dominantShot(metrics.ShotDistribution)
	metrics.IntroShotType = introShot(distances)
	metrics.FramingVolatility = round3(distanceVolatility(distances))

	metrics.AbsenceSegments = absenceSegments(personPresent)
	metrics.AbsenceCount = len(metrics.AbsenceSegments)
	for _, seg := range metrics.AbsenceSegments {
		if seg.Duration > metrics.LongestAbsenceSeconds {
			metrics.LongestAbsenceSeconds = seg.Duration
		}
	}

	applyEnhanced(&metrics, in.Enhanced)

	metrics.FramingPatterns = patternTags(metrics)
	metrics.TemporalEvolution = temporalEvolution(distances, personPresent, seconds)
	metrics.InferredIntent = inferIntent(metrics, in)
	metrics.RiskFactors = riskFactors(metrics)
	metrics.IntentAlignmentRisk = riskLevel(len(metrics.RiskFactors))
	return metrics
}

func presenceArrays(expressions, objects timeline.Timeline, seconds int) (face, person []bool) {
	face = make([]bool, seconds)
	person = make([]bool, seconds)
	for key, entry := range expressions {
		start, ok := timeline.ParseStart(key)
		if !ok || start < 0 || start >= seconds || entry.Expression == "" {
			continue
		}
		face[start] = true
		person[start] = true
	}
	for key, entry := range objects {
		start, ok := timeline.ParseStart(key)
		if !ok || start < 0 || start >= seconds {
			continue
		}
		if entry.Objects["person"] > 0 {
			person[start] = true
		}
	}
	return face, person
}

func ratio(present []bool) float64 {
	if len(present) == 0 {
		return 0
	}
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	return float64(count) / float64(len(present))
}

type distanceEntry struct {
	start int
	label string
}

func sortedDistances(camera timeline.Timeline) []distanceEntry {
	entries := make([]distanceEntry, 0, len(camera))
	for key, entry := range camera {
		start, ok := timeline.ParseStart(key)
		if !ok || entry.Distance == "" {
			continue
		}
		entries = append(entries, distanceEntry{start: start, label: entry.Distance})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].start < entries[j].start })
	return entries
}

func dominantShot(distribution map[string]int) string {
	best := "unknown"
	bestCount := 0
	for _, label := range []string{"close", "medium", "far"} {
		if distribution[label] > bestCount {
			best = label
			bestCount = distribution[label]
		}
	}
	return best
}

func introShot(distances []distanceEntry) string {
	for _, d := range distances {
		if d.start < introWindowSeconds {
			return d.label
		}
	}
	return "unknown"
}

func distanceVolatility(distances []distanceEntry) float64 {
	if len(distances) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(distances); i++ {
		if distances[i].label != distances[i-1].label {
			changes++
		}
	}
	return float64(changes) / float64(len(distances))
}

func absenceSegments(present []bool) []AbsenceSegment {
	segments := []AbsenceSegment{}
	start := -1
	for second, p := range present {
		if !p {
			if start < 0 {
				start = second
			}
			continue
		}
		if start >= 0 {
			segments = append(segments, AbsenceSegment{Start: start, End: second, Duration: second - start})
			start = -1
		}
	}
	if start >= 0 {
		segments = append(segments, AbsenceSegment{Start: start, End: len(present), Duration: len(present) - start})
	}
	return segments
}

func applyEnhanced(metrics *Metrics, enhanced *EnhancedData) {
	if enhanced == nil {
		return
	}
	if enhanced.FaceScreenTimeRatio != nil {
		metrics.FaceScreenTimeRatio = round3(*enhanced.FaceScreenTimeRatio)
	}
	if enhanced.PersonScreenTimeRatio != nil {
		metrics.PersonScreenTimeRatio = round3(*enhanced.PersonScreenTimeRatio)
	}
	if enhanced.DominantShotType != nil && *enhanced.DominantShotType != "" {
		metrics.DominantShotType = *enhanced.DominantShotType
	}
	if enhanced.FramingVolatility != nil {
		metrics.FramingVolatility = round3(*enhanced.FramingVolatility)
	}
}

func patternTags(metrics Metrics) []string {
	tags := []string{}
	if metrics.FaceScreenTimeRatio > strongPresence {
		tags = append(tags, "strong_creator_presence")
	} else if metrics.FaceScreenTimeRatio < minimalPresence {
		tags = append(tags, "minimal_creator_presence")
	}
	if metrics.AbsenceCount > cutawayThreshold {
		tags = append(tags, "cutaway_heavy")
	}
	if metrics.FramingVolatility < stableVolatility {
		tags = append(tags, "stable_framing")
	} else if metrics.FramingVolatility > dynamicVolatility {
		tags = append(tags, "dynamic_framing")
	}
	return tags
}

// temporalEvolution compares per-third closeness and presence to label how
// the framing develops across the video.
func temporalEvolution(distances []distanceEntry, present []bool, seconds int) string {
	if len(distances) == 0 {
		return "no_camera_data"
	}
	third := seconds / 3
	if third == 0 {
		return "consistent_approach"
	}
	closeness := func(from, to int) float64 {
		var sum float64
		count := 0
		for _, d := range distances {
			if d.start >= from && d.start < to {
				sum += closenessValue(d.label)
				count++
			}
		}
		if count == 0 {
			return 0.5
		}
		return sum / float64(count)
	}
	presence := func(from, to int) float64 {
		if to > len(present) {
			to = len(present)
		}
		if from >= to {
			return 0
		}
		count := 0
		for i := from; i < to; i++ {
			if present[i] {
				count++
			}
		}
		return float64(count) / float64(to-from)
	}

	c1, c3 := closeness(0, third), closeness(seconds-third, seconds)
	p1 := presence(0, third)
	p2 := presence(third, seconds-third)
	p3 := presence(seconds-third, seconds)

	switch {
	case p1 < 0.3 && p3 > 0.6:
		return "product_to_person"
	case p1 > 0.6 && p3 < 0.3:
		return "person_to_product"
	case p1 > 0.5 && p3 > 0.5 && p2 < 0.3:
		return "bookend_pattern"
	case c3 > c1+0.2:
		return "increasing_intimacy"
	case c1 > c3+0.2:
		return "decreasing_intimacy"
	default:
		return "consistent_approach"
	}
}

func closenessValue(label string) float64 {
	switch label {
	case "close":
		return 1
	case "medium":
		return 0.5
	default:
		return 0
	}
}

// inferIntent combines the intro shot, overall presence, and optional
// action-recognition hints through a fixed decision table.
func inferIntent(metrics Metrics, in Inputs) string {
	hints := map[string]bool{}
	for _, hint := range in.ActionHints {
		hints[hint] = true
	}
	switch {
	case hints["demonstrating"] || hints["using_product"]:
		return "product_demo"
	case hints["explaining"] || hints["teaching"]:
		return "education"
	case metrics.IntroShotType == "close" && metrics.FaceScreenTimeRatio >= 0.5:
		return "creator_connection"
	case metrics.PersonScreenTimeRatio < minimalPresence && hasNonPersonObjects(in.Objects):
		return "product_showcase"
	case metrics.IntroShotType == "medium" && metrics.FaceScreenTimeRatio >= 0.3 && metrics.FaceScreenTimeRatio < strongPresence:
		return "education"
	default:
		return "entertainment"
	}
}

func hasNonPersonObjects(objects timeline.Timeline) bool {
	for _, entry := range objects {
		for label, count := range entry.Objects {
			if label != "person" && count > 0 {
				return true
			}
		}
	}
	return false
}

// riskFactors lists measurements that contradict expectations for the
// inferred intent.
func riskFactors(metrics Metrics) []string {
	factors := []string{}
	switch metrics.InferredIntent {
	case "creator_connection":
		if metrics.FaceScreenTimeRatio < 0.5 {
			factors = append(factors, "creator_connection intent but face ratio below 0.5")
		}
		if metrics.FramingVolatility > dynamicVolatility {
			factors = append(factors, "creator_connection intent but framing is highly dynamic")
		}
	case "product_demo", "education":
		if metrics.PersonScreenTimeRatio < minimalPresence {
			factors = append(factors, metrics.InferredIntent+" intent but person rarely on screen")
		}
	case "product_showcase":
		if metrics.FaceScreenTimeRatio > strongPresence {
			factors = append(factors, "product_showcase intent but face dominates screen time")
		}
	}
	if metrics.AbsenceCount > cutawayThreshold && metrics.InferredIntent == "creator_connection" {
		factors = append(factors, "creator_connection intent but cutaway heavy")
	}
	return factors
}

func riskLevel(count int) string {
	switch {
	case count == 0:
		return "low"
	case count == 1:
		return "medium"
	default:
		return "high"
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
