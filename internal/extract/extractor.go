package extract

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clipsight/internal/analysis"
	"clipsight/internal/logging"
	"clipsight/internal/metrics/density"
	"clipsight/internal/metrics/emotional"
	"clipsight/internal/metrics/framing"
	"clipsight/internal/metrics/pacing"
	"clipsight/internal/metrics/speech"
	"clipsight/internal/timeline"
	"clipsight/internal/validation"
)

const (
	defaultMaxEntries   = 50
	defaultFirstSeconds = 5
	captionLimit        = 500
	sourceTag           = "ml_detections"
)

// Provenance records where and when a context object came from.
type Provenance struct {
	RunID       string    `json:"run_id"`
	ExtractedAt time.Time `json:"extracted_at"`
	Purpose     string    `json:"purpose"`
	Source      string    `json:"source"`
}

// Context is the bounded extract handed to the LLM collaborator. Sections
// hold either sampled timeline slices or one engine's metric object, keyed by
// section name. Error is set only on the lenient fallback path.
type Context struct {
	VideoID         string         `json:"video_id"`
	DurationSeconds float64        `json:"duration_seconds"`
	Caption         string         `json:"caption,omitempty"`
	EngagementStats map[string]any `json:"engagement_stats,omitempty"`
	EntryCounts     map[string]int `json:"timeline_entry_counts"`
	Sections        map[string]any `json:"sections,omitempty"`
	Insights        map[string]any `json:"insights,omitempty"`
	Provenance      Provenance     `json:"provenance"`
	Error           string         `json:"error,omitempty"`
}

// Extractor dispatches purposes to extraction strategies. The validator gates
// every extraction; in lenient mode a broken document degrades to a fallback
// context instead of an error.
type Extractor struct {
	validator    *validation.Validator
	maxEntries   int
	firstSeconds int
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxEntries bounds sampled timeline slices.
func WithMaxEntries(max int) Option {
	return func(e *Extractor) {
		if max > 0 {
			e.maxEntries = max
		}
	}
}

// WithFirstSeconds sets the hook-analysis cutoff.
func WithFirstSeconds(seconds int) Option {
	return func(e *Extractor) {
		if seconds > 0 {
			e.firstSeconds = seconds
		}
	}
}

// WithLogger attaches a logger for lenient-mode warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logging.NewComponentLogger(logger, "extractor")
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New constructs an Extractor around a validator.
func New(validator *validation.Validator, opts ...Option) *Extractor {
	extractor := &Extractor{
		validator:    validator,
		maxEntries:   defaultMaxEntries,
		firstSeconds: defaultFirstSeconds,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(extractor)
	}
	if extractor.validator == nil {
		extractor.validator = validation.New(validation.Lenient)
	}
	return extractor
}

// MaxEntries exposes the sampling bound so callers can budget tokens.
func (e *Extractor) MaxEntries() int { return e.maxEntries }

// Extract builds the context object for one (document, purpose) pair. In
// strict mode structural validation failures and nil documents return an
// error; in lenient mode every failure path degrades to a fallback context
// carrying the error text.
func (e *Extractor) Extract(doc *timeline.Document, purpose Purpose) (*Context, error) {
	if doc == nil {
		err := analysis.Wrap(analysis.ErrExtraction, "extractor", string(purpose), "nil document", nil)
		if e.validator.Mode() == validation.Strict {
			return nil, err
		}
		return e.fallback(nil, purpose, err), nil
	}

	if _, err := e.validator.ValidateDocument(doc); err != nil {
		if e.validator.Mode() == validation.Strict {
			return nil, analysis.Wrap(analysis.ErrExtraction, "extractor", string(purpose), "document rejected", err)
		}
		logging.WarnWithContext(e.logger, "extracting from invalid document", "invalid_document",
			logging.String(logging.FieldVideoID, doc.VideoID),
			logging.String(logging.FieldPurpose, string(purpose)),
			logging.Error(err))
	}

	ctx := e.base(doc, purpose)
	switch purpose {
	case PurposeHookAnalysis:
		sections := map[string]any{}
		kinds := append(timeline.RequiredKinds(), timeline.KindSceneChange)
		for _, kind := range kinds {
			filtered := FirstSeconds(doc.Timeline(kind), e.firstSeconds)
			if len(filtered) > e.maxEntries {
				filtered = filtered[:e.maxEntries]
			}
			if len(filtered) > 0 {
				sections[kind] = filtered
			}
		}
		ctx.Sections[fmt.Sprintf("first_%d_seconds", e.firstSeconds)] = sections
	case PurposeCreativeDensity:
		ctx.Sections["density_metrics"] = density.Compute(doc.Timelines, doc.DurationSeconds)
	case PurposeEmotionalArc:
		ctx.Sections["emotional_metrics"] = emotional.Compute(
			doc.Timeline(timeline.KindExpression),
			doc.Timeline(timeline.KindSpeech),
			doc.Timeline(timeline.KindGesture),
			doc.DurationSeconds,
			emotional.Options{})
	case PurposeScenePacing:
		ctx.Sections["pacing_metrics"] = pacing.Compute(
			doc.Timeline(timeline.KindSceneChange),
			doc.DurationSeconds,
			doc.Timeline(timeline.KindObject),
			doc.Timeline(timeline.KindCameraDistance))
	case PurposeFramingAnalysis:
		ctx.Sections["framing_metrics"] = framing.Compute(framing.InputsFromDocument(doc))
	case PurposeSpeechAnalysis, PurposeCTAAlignment:
		ctx.Sections["speech_metrics"] = e.speechMetrics(doc)
	case PurposeEngagementTriggers:
		for _, kind := range []string{timeline.KindTextOverlay, timeline.KindSticker, timeline.KindGesture} {
			if sampled := Sample(doc.Timeline(kind), e.maxEntries); len(sampled) > 0 {
				ctx.Sections[kind] = sampled
			}
		}
	case PurposeSummary:
		// Counts only, plus any insights already on the document; no raw
		// timeline content leaves the summary branch.
	default:
		err := analysis.Wrap(analysis.ErrExtraction, "extractor", "dispatch",
			fmt.Sprintf("unknown purpose %q", purpose), nil)
		if e.validator.Mode() == validation.Strict {
			return nil, err
		}
		return e.fallback(doc, purpose, err), nil
	}
	return ctx, nil
}

func (e *Extractor) speechMetrics(doc *timeline.Document) speech.Metrics {
	return speech.Compute(speech.Inputs{
		Speech:      doc.Timeline(timeline.KindSpeech),
		Transcript:  doc.Transcript(),
		Segments:    doc.SpeechSegments(),
		Expressions: doc.Timeline(timeline.KindExpression),
		Gestures:    doc.Timeline(timeline.KindGesture),
		Duration:    doc.DurationSeconds,
	})
}

func (e *Extractor) base(doc *timeline.Document, purpose Purpose) *Context {
	counts := make(map[string]int, len(doc.Timelines))
	for kind, tl := range doc.Timelines {
		counts[kind] = len(tl)
	}
	return &Context{
		VideoID:         doc.VideoID,
		DurationSeconds: doc.DurationSeconds,
		Caption:         doc.Caption(captionLimit),
		EngagementStats: doc.StaticMetadata.Stats,
		EntryCounts:     counts,
		Sections:        map[string]any{},
		Insights:        doc.Insights,
		Provenance:      e.provenance(purpose),
	}
}

// fallback is the minimal context for a document extraction could not serve.
// It always carries identity, a provenance block, and the error text.
func (e *Extractor) fallback(doc *timeline.Document, purpose Purpose, err error) *Context {
	ctx := &Context{
		EntryCounts: map[string]int{},
		Provenance:  e.provenance(purpose),
		Error:       err.Error(),
	}
	if doc != nil {
		ctx.VideoID = doc.VideoID
		ctx.DurationSeconds = doc.DurationSeconds
		for kind, tl := range doc.Timelines {
			ctx.EntryCounts[kind] = len(tl)
		}
	}
	return ctx
}

func (e *Extractor) provenance(purpose Purpose) Provenance {
	return Provenance{
		RunID:       uuid.NewString(),
		ExtractedAt: e.now().UTC(),
		Purpose:     string(purpose),
		Source:      sourceTag,
	}
}
