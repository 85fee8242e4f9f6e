package validation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Match records one suspicious-substring hit: where it was found, which
// pattern matched, and the containing string value.
type Match struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern"`
	Value   string `json:"value"`
}

func (m Match) String() string {
	return fmt.Sprintf("suspicious pattern %q at %s: %s", m.Pattern, m.Path, m.Value)
}

// suspiciousPatterns are substrings that indicate placeholder or hallucinated
// content rather than genuine detection output. Matching is caseless.
var suspiciousPatterns = []string{
	"link in bio",
	"swipe up",
	"tap here",
	"click link",
	"example.com",
	"lorem ipsum",
	"placeholder",
	"coming soon",
	"test test test",
	"[insert here]",
}

// SuspiciousPatterns returns a copy of the fabrication-indicator list.
func SuspiciousPatterns() []string {
	out := make([]string, len(suspiciousPatterns))
	copy(out, suspiciousPatterns)
	return out
}

// ScanSuspicious walks a decoded JSON tree and reports every string leaf that
// contains a fabrication-indicator phrase. Matches are warnings only; they
// never block extraction.
func ScanSuspicious(value any) []Match {
	fold := cases.Fold()
	var matches []Match
	WalkStrings(value, func(path, leaf string) {
		folded := fold.String(leaf)
		for _, pattern := range suspiciousPatterns {
			if strings.Contains(folded, fold.String(pattern)) {
				matches = append(matches, Match{Path: path, Pattern: pattern, Value: leaf})
			}
		}
	})
	return matches
}

// WalkStrings visits every string leaf of a decoded JSON tree in a stable
// order. The path uses dotted keys and bracketed indices, e.g.
// ".timelines.textOverlayTimeline.0-1s.texts[0].text".
func WalkStrings(value any, visit func(path, leaf string)) {
	walkStrings("", value, visit)
}

func walkStrings(path string, value any, visit func(path, leaf string)) {
	switch node := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			walkStrings(path+"."+key, node[key], visit)
		}
	case []any:
		for i, item := range node {
			walkStrings(fmt.Sprintf("%s[%d]", path, i), item, visit)
		}
	case string:
		if path == "" {
			path = "."
		}
		visit(path, node)
	default:
		// Numbers, booleans, and nulls carry no text to scan.
	}
}
