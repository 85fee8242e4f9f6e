package timeline

import "regexp"

// Span is the half-open interval [Start, End) in whole seconds described by a
// key such as "12-13s".
type Span struct {
	Start int
	End   int
}

var spanPattern = regexp.MustCompile(`^(\d+)-(\d+)s$`)

// ParseSpan interprets an interval key. It reports false for malformed keys
// instead of returning an error; upstream detectors occasionally emit garbage
// keys and a single bad key must never abort a larger aggregation.
func ParseSpan(key string) (Span, bool) {
	match := spanPattern.FindStringSubmatch(key)
	if match == nil {
		return Span{}, false
	}
	start, ok := parseSeconds(match[1])
	if !ok {
		return Span{}, false
	}
	end, ok := parseSeconds(match[2])
	if !ok {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// ParseStart returns the start-of-interval second for a well-formed key.
func ParseStart(key string) (int, bool) {
	span, ok := ParseSpan(key)
	if !ok {
		return 0, false
	}
	return span.Start, true
}

// ValidKey reports whether key matches the interval-label format.
func ValidKey(key string) bool {
	return spanPattern.MatchString(key)
}

// Contains reports whether the continuous-time instant falls inside the span.
func (s Span) Contains(instant float64) bool {
	return float64(s.Start) <= instant && instant < float64(s.End)
}

// Seconds returns the span width in seconds.
func (s Span) Seconds() int {
	return s.End - s.Start
}

func parseSeconds(digits string) (int, bool) {
	// The regexp guarantees digits only; guard against overflow on absurd keys.
	if len(digits) > 9 {
		return 0, false
	}
	value := 0
	for _, r := range digits {
		value = value*10 + int(r-'0')
	}
	return value, true
}
