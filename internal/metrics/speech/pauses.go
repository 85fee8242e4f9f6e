package speech

import "clipsight/internal/timeline"

const (
	// PauseStrategic is a beat between thoughts, over 1s.
	PauseStrategic = "strategic"
	// PauseDramatic is a held silence for effect, over 2s.
	PauseDramatic = "dramatic"
	// PauseAwkward is dead air, over 3s.
	PauseAwkward = "awkward"

	strategicPauseSeconds = 1.0
	dramaticPauseSeconds  = 2.0
	awkwardPauseSeconds   = 3.0
)

// Pause is a silent gap between two consecutive speech segments.
type Pause struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Type     string  `json:"type"`
}

// detectPauses walks sorted segments and records gaps over one second.
// Classification tests the most specific band first, so a gap of exactly 3s
// is dramatic, not awkward.
func detectPauses(segments []timeline.SpeechSegment) []Pause {
	pauses := []Pause{}
	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap <= strategicPauseSeconds {
			continue
		}
		pauses = append(pauses, Pause{
			Start:    round2(segments[i-1].End),
			End:      round2(segments[i].Start),
			Duration: round2(gap),
			Type:     classifyPause(gap),
		})
	}
	return pauses
}

func classifyPause(gap float64) string {
	switch {
	case gap > awkwardPauseSeconds:
		return PauseAwkward
	case gap > dramaticPauseSeconds:
		return PauseDramatic
	default:
		return PauseStrategic
	}
}
