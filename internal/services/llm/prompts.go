package llm

import (
	"encoding/json"
	"fmt"

	"clipsight/internal/extract"
)

const basePrompt = `You are a short-video performance analyst. You receive a
JSON context object extracted from machine-detected timelines of one video.
Ground every claim in the provided numbers; never invent detections that are
not in the context. Respond with a single JSON object containing "findings"
(array of strings), "score" (0-10 number), and "summary" (one paragraph).`

var purposeGuidance = map[extract.Purpose]string{
	extract.PurposeHookAnalysis:       "Focus on the first seconds: what grabs attention, and whether the opening earns the viewer's next five seconds.",
	extract.PurposeCreativeDensity:    "Assess how creative elements are distributed over time and whether the density pattern serves retention.",
	extract.PurposeEmotionalArc:       "Describe the emotional trajectory, its peaks, and whether transitions feel earned.",
	extract.PurposeScenePacing:        "Evaluate the editing rhythm: cut frequency, montage use, and acceleration across the video.",
	extract.PurposeFramingAnalysis:    "Evaluate creator presence, shot distances, and whether the framing matches the inferred intent.",
	extract.PurposeSpeechAnalysis:     "Evaluate delivery: rhythm, pauses, hooks, and how speech syncs with what is on screen.",
	extract.PurposeEngagementTriggers: "Identify on-screen elements likely to prompt comments, shares, or rewatches.",
	extract.PurposeCTAAlignment:       "Assess the calls to action: their timing, clustering, and fit with the content.",
	extract.PurposeSummary:            "Give a high-level read of the video from the entry counts and metadata alone.",
}

func systemPrompt(purpose extract.Purpose) string {
	guidance, ok := purposeGuidance[purpose]
	if !ok {
		guidance = purposeGuidance[extract.PurposeSummary]
	}
	return basePrompt + "\n\n" + guidance
}

func buildUserPrompt(purpose extract.Purpose, contextObj *extract.Context) (string, error) {
	encoded, err := json.MarshalIndent(contextObj, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Purpose: %s\n\nContext object:\n%s", purpose, encoded), nil
}
