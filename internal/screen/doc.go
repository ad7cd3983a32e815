// Package screen labels sampled frames as pre-match, win result, lose result,
// or other.
//
// A Classifier holds one detector per positive label, each made of a
// reference template, a frame region expressed as width/height ratios, and a
// similarity threshold. Detectors run in a fixed priority order (matching,
// win, lose) and the first whose similarity reaches its threshold decides the
// label. A detector whose template cannot be loaded is disabled on its own;
// the remaining labels are still detected.
package screen
