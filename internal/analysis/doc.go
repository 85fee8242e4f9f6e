// Package analysis defines shared error markers used across the validation,
// extraction, and insight components.
//
// Errors are tagged with a sentinel marker so callers can classify failures
// with errors.Is without parsing messages: validation defects, extraction
// failures, configuration problems, and external-service errors each map to
// their own marker.
package analysis
