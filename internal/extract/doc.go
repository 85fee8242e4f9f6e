// Package extract builds bounded, purpose-specific context objects from a
// unified analysis document. Each purpose maps to one extraction strategy:
// a first-seconds filter, an evenly sampled slice, a metric engine call, or
// a counts-only summary fallback. Output size is bounded regardless of input
// density.
package extract
