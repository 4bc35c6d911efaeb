// Package fuzztests houses Go fuzz harnesses for the script codec and the
// session builder. They guard against panics in the line parser and check
// that byte-driven sessions keep every structural invariant.
package fuzztests
