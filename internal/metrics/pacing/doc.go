// Package pacing derives editing-rhythm features from the scene-change
// timeline: shot duration statistics, cut frequency, montage detection, and
// an acceleration score comparing the two halves of the video.
//
// The engine sorts scene-change entries itself; input order is not trusted.
// The optional object and camera-distance timelines add visual-load and
// shot-type-change correlates when present.
package pacing
