// Package validation checks unified analysis documents before their content
// is forwarded to the LLM collaborator.
//
// Three families of checks run over a document:
//
//  1. Structure: required fields, required timeline kinds, per-kind entry
//     shapes, and interval-key format.
//  2. Consistency: timeline entries beyond the video duration, frame-count vs
//     duration*fps drift, and metadata-summary claims unsupported by timeline
//     data.
//  3. Suspicious content: a recursive scan of every string leaf for known
//     fabrication-indicator phrases ("link in bio", "lorem ipsum", ...).
//
// Structure defects fail a document; consistency findings and suspicious
// matches are always surfaced as warnings and never block extraction, since
// legitimate content can legitimately contain a suspicious phrase. In strict
// mode structural defects escalate to an error tagged analysis.ErrValidation;
// lenient mode collects issues and proceeds.
package validation
