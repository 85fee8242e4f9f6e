package extract

import (
	"fmt"
	"strings"

	"clipsight/internal/analysis"
)

// Purpose names an analysis goal. The set is closed so a typo in a purpose
// name fails at parse time instead of silently falling through to the
// summary branch.
type Purpose string

const (
	PurposeHookAnalysis       Purpose = "hook_analysis"
	PurposeCreativeDensity    Purpose = "creative_density"
	PurposeEmotionalArc       Purpose = "emotional_arc"
	PurposeScenePacing        Purpose = "scene_pacing"
	PurposeFramingAnalysis    Purpose = "framing_analysis"
	PurposeSpeechAnalysis     Purpose = "speech_analysis"
	PurposeEngagementTriggers Purpose = "engagement_triggers"
	PurposeCTAAlignment       Purpose = "cta_alignment"
	PurposeSummary            Purpose = "summary"
)

// Purposes lists every valid purpose in display order.
func Purposes() []Purpose {
	return []Purpose{
		PurposeHookAnalysis,
		PurposeCreativeDensity,
		PurposeEmotionalArc,
		PurposeScenePacing,
		PurposeFramingAnalysis,
		PurposeSpeechAnalysis,
		PurposeEngagementTriggers,
		PurposeCTAAlignment,
		PurposeSummary,
	}
}

// ParsePurpose validates a purpose name.
func ParsePurpose(value string) (Purpose, error) {
	normalized := Purpose(strings.ToLower(strings.TrimSpace(value)))
	for _, purpose := range Purposes() {
		if normalized == purpose {
			return purpose, nil
		}
	}
	return "", analysis.Wrap(analysis.ErrConfiguration, "extract", "parse purpose",
		fmt.Sprintf("unknown purpose %q", value), nil)
}

func (p Purpose) String() string { return string(p) }
