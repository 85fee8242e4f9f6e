// Package timeline defines the unified analysis document model and the
// interval-key utilities shared by every metric engine.
//
// A timeline is a sparse mapping from interval labels ("12-13s") to the
// detections recorded for that interval. Keys originate from independent
// upstream detectors and are not guaranteed well-formed; consumers skip
// malformed keys rather than failing a whole computation. Gaps between keys
// mean "no detection", not "no data collected".
//
// Document decoding is tolerant: the raw JSON tree is retained for the
// validator and fabrication scanner, while typed timeline views drop entries
// that do not match the expected per-kind shape.
package timeline
