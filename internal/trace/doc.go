// Package trace renders game events as canonical JSON.
//
// Canonical form makes traces byte-comparable, which is what golden files
// and journal verification rely on:
//
//   - object keys sorted by UTF-16 code units (RFC 8785)
//   - strings NFC normalized, no HTML escaping
//   - integers only; floats and null are rejected
//   - no insignificant whitespace
//
// A trace file is JSON Lines: one canonical object per line, the first line
// being a header that describes the run.
package trace
