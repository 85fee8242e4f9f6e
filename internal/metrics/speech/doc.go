// Package speech derives delivery features from the transcript and speech
// segments: rhythm and pause structure, hook and call-to-action phrase
// detection, transcription quality, verbal engagement, and cross-modal sync
// against the gesture and expression timelines.
//
// Phrase timestamps are estimated by linear interpolation of word position
// against total speaking time. That is an approximation, not an alignment;
// it is good enough to place a phrase in the right part of the video.
package speech
