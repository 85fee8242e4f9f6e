// Command clipsight validates unified analysis documents, extracts bounded
// context objects, runs the metric engines, and manages stored reports.
package main
