// Package server exposes stored reports and on-demand validation and
// extraction over a small read-mostly HTTP API.
package server
