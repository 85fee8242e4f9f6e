package main

import (
	"github.com/spf13/cobra"

	"clipsight/internal/metrics/density"
	"clipsight/internal/metrics/emotional"
	"clipsight/internal/metrics/framing"
	"clipsight/internal/metrics/pacing"
	"clipsight/internal/metrics/speech"
	"clipsight/internal/timeline"
)

// analyzeResult bundles every engine's metrics for one document.
type analyzeResult struct {
	VideoID         string            `json:"video_id"`
	DurationSeconds float64           `json:"duration_seconds"`
	Density         density.Metrics   `json:"density"`
	Emotional       emotional.Metrics `json:"emotional"`
	Pacing          pacing.Metrics    `json:"pacing"`
	Framing         framing.Metrics   `json:"framing"`
	Speech          speech.Metrics    `json:"speech"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <document>",
		Short: "Run every metric engine over a document",
		Long: `Run the density, emotional, pacing, framing, and speech engines over a
document and print the combined metrics as JSON. No validation gate and no
LLM call; this is the raw numeric view of a document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := timeline.Load(args[0])
			if err != nil {
				return err
			}
			result := analyzeResult{
				VideoID:         doc.VideoID,
				DurationSeconds: doc.DurationSeconds,
				Density:         density.Compute(doc.Timelines, doc.DurationSeconds),
				Emotional: emotional.Compute(
					doc.Timeline(timeline.KindExpression),
					doc.Timeline(timeline.KindSpeech),
					doc.Timeline(timeline.KindGesture),
					doc.DurationSeconds,
					emotional.Options{}),
				Pacing: pacing.Compute(
					doc.Timeline(timeline.KindSceneChange),
					doc.DurationSeconds,
					doc.Timeline(timeline.KindObject),
					doc.Timeline(timeline.KindCameraDistance)),
				Framing: framing.Compute(framing.InputsFromDocument(doc)),
				Speech: speech.Compute(speech.Inputs{
					Speech:      doc.Timeline(timeline.KindSpeech),
					Transcript:  doc.Transcript(),
					Segments:    doc.SpeechSegments(),
					Expressions: doc.Timeline(timeline.KindExpression),
					Gestures:    doc.Timeline(timeline.KindGesture),
					Duration:    doc.DurationSeconds,
				}),
			}
			return writeJSON(cmd, result)
		},
	}
	return cmd
}
