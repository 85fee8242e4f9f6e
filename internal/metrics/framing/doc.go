// Package framing measures creator presence and camera-distance behavior and
// infers the video's framing intent.
//
// A second counts as "person present" when the expression timeline carries a
// non-empty expression there or the object timeline records a person. When an
// enhanced human-analysis summary supplies the same fields, its values
// override the locally computed ones: external data takes precedence.
package framing
