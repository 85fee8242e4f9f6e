package speech

// Composite score weights. Each score is a fixed weighted combination of
// boolean and ratio signals, bounded to [0, 1].
const (
	hookCountWeight     = 0.2
	hookCountCap        = 0.6
	earlyHookWeight     = 0.4
	earlyHookSeconds    = 3.0

	ctaPresenceWeight = 0.3
	ctaClusterWeight  = 0.3
	lateCTAWeight     = 0.4
	lateCTAFraction   = 0.8

	fillerPenaltyScale = 5.0
	fillerPenaltyCap   = 0.5

	engagementAddressWeight  = 0.4
	engagementQuestionWeight = 0.3
	engagementInclusiveScale = 10.0
	engagementInclusiveWt    = 0.3

	authenticityBase          = 0.3
	authenticityFillerWeight  = 0.3
	authenticityAddressWeight = 0.2
	authenticityCTAWeight     = 0.2
	naturalFillerFloor        = 0.005
	naturalFillerCeiling      = 0.08
	salesyCTACount            = 5.0

	harmonyGestureWeight = 0.5
	harmonyFaceWeight    = 0.5
)

func applyScores(metrics *Metrics, in Inputs) {
	hookScore := hookCountWeight * float64(len(metrics.Hooks))
	if hookScore > hookCountCap {
		hookScore = hookCountCap
	}
	for _, hook := range metrics.Hooks {
		if hook.EstimatedTime <= earlyHookSeconds {
			hookScore += earlyHookWeight
			break
		}
	}
	metrics.HookEffectiveness = round2(clamp01(hookScore))

	ctaScore := 0.0
	if len(metrics.CTAs) > 0 {
		ctaScore += ctaPresenceWeight
	}
	if len(metrics.CTAClusters) > 0 {
		ctaScore += ctaClusterWeight
	}
	if in.Duration > 0 {
		for _, cta := range metrics.CTAs {
			if cta.EstimatedTime >= in.Duration*lateCTAFraction {
				ctaScore += lateCTAWeight
				break
			}
		}
	}
	metrics.CTAEffectiveness = round2(clamp01(ctaScore))

	meanConfidence := 0.0
	populated := 0
	for _, conf := range metrics.ConfidenceByWindow {
		if conf > 0 {
			meanConfidence += conf
			populated++
		}
	}
	if populated > 0 {
		meanConfidence /= float64(populated)
	}
	penalty := metrics.FillerRatio * fillerPenaltyScale
	if penalty > fillerPenaltyCap {
		penalty = fillerPenaltyCap
	}
	metrics.DeliveryConfidence = round2(clamp01(meanConfidence * (1 - penalty)))

	engagement := engagementAddressWeight*clamp01(float64(metrics.DirectAddressCount)/10) +
		engagementQuestionWeight*clamp01(float64(metrics.QuestionCount)/3) +
		engagementInclusiveWt*clamp01(metrics.InclusiveRatio*engagementInclusiveScale)
	metrics.VerbalEngagementScore = round2(clamp01(engagement))

	authenticity := authenticityBase
	if metrics.FillerRatio >= naturalFillerFloor && metrics.FillerRatio <= naturalFillerCeiling {
		// A scripted read has no fillers at all; a natural band reads as real.
		authenticity += authenticityFillerWeight
	}
	if metrics.DirectAddressCount > 0 {
		authenticity += authenticityAddressWeight
	}
	authenticity += authenticityCTAWeight * (1 - clamp01(float64(len(metrics.CTAs))/salesyCTACount))
	metrics.AuthenticityScore = round2(clamp01(authenticity))

	metrics.VisualVerbalHarmony = round2(clamp01(
		harmonyGestureWeight*metrics.GestureSyncRatio + harmonyFaceWeight*metrics.FaceOnScreenRatio))
}
