// Package density counts creative elements per second across every visual
// modality and classifies the resulting distribution.
//
// The engine builds a per-second count array from the text, sticker, gesture,
// expression, and object timelines, then derives summary statistics, peak
// moments with local-window surprise scores, mutually non-exclusive pattern
// tags, and a 0-10 density score from a piecewise-linear mapping of the mean.
package density
