// Package pipeline runs one analysis of a recording end to end.
//
// A run samples frames (or reuses the cached frame list), classifies every
// frame (or reuses the cached labels), scans the labels for match
// boundaries, reads the pre-match fields when recognition is enabled, and
// writes the CSV outputs. Finished runs are archived in the history store.
//
// Only unreadable inputs and unreadable cache entries abort a run. Missing
// templates, vocabularies, and failed field reads degrade the output.
package pipeline
