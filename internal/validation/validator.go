package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"clipsight/internal/analysis"
	"clipsight/internal/logging"
	"clipsight/internal/timeline"
)

// Mode controls how structural defects are handled: lenient collects issues
// and proceeds, strict escalates the first defect to an error.
type Mode int

const (
	Lenient Mode = iota
	Strict
)

// ParseMode interprets a config/CLI mode string.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("validation mode: unsupported value %q", value)
	}
}

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Validator checks unified analysis documents. Construct one explicitly per
// caller with the mode it wants; there is no process-wide instance.
type Validator struct {
	mode           Mode
	frameTolerance float64
	logger         *slog.Logger
}

// Option customizes a Validator.
type Option func(*Validator)

// WithLogger attaches a logger for warning output in lenient mode.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithFrameTolerance overrides the frame-count drift tolerance (default 10%).
func WithFrameTolerance(tolerance float64) Option {
	return func(v *Validator) {
		if tolerance > 0 {
			v.frameTolerance = tolerance
		}
	}
}

// New constructs a validator in the given mode.
func New(mode Mode, opts ...Option) *Validator {
	v := &Validator{
		mode:           mode,
		frameTolerance: 0.10,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mode returns the validator's operating mode.
func (v *Validator) Mode() Mode {
	return v.mode
}

// ValidateDocument runs every check category over a document and returns the
// grouped report. In strict mode a structurally invalid document additionally
// returns an error tagged analysis.ErrValidation; the report is returned
// either way so callers always see the full issue list.
func (v *Validator) ValidateDocument(doc *timeline.Document) (*Report, error) {
	report := &Report{}
	if doc == nil {
		report.Structure = append(report.Structure, "document is nil")
		return report, v.structuralFailure(report)
	}
	report.VideoID = doc.VideoID

	rawDoc, _ := doc.Raw().(map[string]any)
	report.Structure = checkStructure(rawDoc)
	report.Timelines = checkTimelines(rawTimelines(rawDoc))
	report.Consistency = checkConsistency(doc, rawDoc, v.frameTolerance)
	report.Suspicious = ScanSuspicious(doc.Raw())

	if !report.StructurallyValid() {
		if v.mode == Strict {
			return report, v.structuralFailure(report)
		}
		logging.WarnWithContext(v.logger, "document failed structural validation",
			"validation_structure_failed",
			logging.String("video_id", doc.VideoID),
			logging.Int("issue_count", len(report.Structure)+len(report.Timelines)),
		)
	}
	return report, nil
}

// ValidateTimeline checks one timeline's keys and per-kind entry shapes.
// The timeline is passed as a raw decoded JSON value so mistyped entries are
// still visible. An empty timeline is always valid.
func (v *Validator) ValidateTimeline(raw any, kind string) []string {
	entries, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("invalid timeline format: %s should be a mapping", kind)}
	}
	return checkTimelineEntries(entries, kind)
}

func (v *Validator) structuralFailure(report *Report) error {
	issues := append(append([]string{}, report.Structure...), report.Timelines...)
	return analysis.Wrap(analysis.ErrValidation, "validation", "document",
		strings.Join(issues, "; "), nil)
}

func checkStructure(rawDoc map[string]any) []string {
	var issues []string
	if rawDoc == nil {
		return []string{"document is not a JSON object"}
	}
	for _, field := range []string{"video_id", "timelines", "static_metadata", "duration_seconds"} {
		if _, ok := rawDoc[field]; !ok {
			issues = append(issues, fmt.Sprintf("missing required field: %s", field))
		}
	}
	if raw, ok := rawDoc["timelines"]; ok {
		if _, ok := raw.(map[string]any); !ok {
			issues = append(issues, "invalid timelines format: should be a mapping")
		}
	}
	if raw, ok := rawDoc["static_metadata"]; ok {
		metadata, ok := raw.(map[string]any)
		if !ok {
			issues = append(issues, "invalid static_metadata format: should be a mapping")
		} else if stats, ok := metadata["stats"]; ok {
			if _, ok := stats.(map[string]any); !ok {
				issues = append(issues, "invalid stats format in static_metadata")
			}
		}
	}
	return issues
}

func checkTimelines(timelines map[string]any) []string {
	if timelines == nil {
		return nil
	}
	var issues []string
	for _, kind := range timeline.RequiredKinds() {
		raw, ok := timelines[kind]
		if !ok {
			issues = append(issues, fmt.Sprintf("missing timeline: %s", kind))
			continue
		}
		entries, ok := raw.(map[string]any)
		if !ok {
			issues = append(issues, fmt.Sprintf("invalid timeline format: %s should be a mapping", kind))
			continue
		}
		issues = append(issues, checkTimelineEntries(entries, kind)...)
	}
	return issues
}

func checkTimelineEntries(entries map[string]any, kind string) []string {
	if len(entries) == 0 {
		return nil
	}
	var issues []string
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !timeline.ValidKey(key) {
			issues = append(issues, fmt.Sprintf("invalid timestamp format in %s: %s", kind, key))
			// Keep checking the remaining keys; one bad key is never fatal.
		}
		issues = append(issues, checkEntryShape(entries[key], kind, key)...)
	}
	return issues
}

func checkEntryShape(raw any, kind, key string) []string {
	switch kind {
	case timeline.KindObject:
		entry, ok := raw.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("invalid data at %s in %s", key, kind)}
		}
		if objects, ok := entry["objects"]; !ok {
			return []string{fmt.Sprintf("missing 'objects' field at %s in %s", key, kind)}
		} else if _, ok := objects.(map[string]any); !ok {
			return []string{fmt.Sprintf("invalid 'objects' field at %s in %s: should be a mapping", key, kind)}
		}
	case timeline.KindTextOverlay:
		entry, ok := raw.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("invalid data at %s in %s", key, kind)}
		}
		if texts, ok := entry["texts"]; ok {
			if _, ok := texts.([]any); !ok {
				return []string{fmt.Sprintf("invalid 'texts' field at %s in %s: should be a list", key, kind)}
			}
		}
	case timeline.KindSpeech:
		if _, ok := raw.(map[string]any); !ok {
			return []string{fmt.Sprintf("invalid data at %s in %s", key, kind)}
		}
	}
	return nil
}

func rawTimelines(rawDoc map[string]any) map[string]any {
	if rawDoc == nil {
		return nil
	}
	timelines, _ := rawDoc["timelines"].(map[string]any)
	return timelines
}
