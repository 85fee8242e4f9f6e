// Package emotional samples the dominant facial expression per fixed-width
// window, maps labels onto a valence scale, and classifies the resulting
// trajectory.
//
// Windows with no detections default to neutral; unknown labels map to zero
// valence. Alignment with the gesture timeline is scored against a fixed
// emotion/gesture compatibility table.
package emotional
