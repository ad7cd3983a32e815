// Package textmatch corrects noisy recognized text against closed candidate
// vocabularies.
//
// Raw text is normalized (spaces removed, circled digits mapped to ASCII),
// scored against every candidate of the field's category with a
// category-specific scorer, and the best candidate is accepted only when its
// score reaches the configured cutoff. Player names are scored on literal
// similarity with a light length penalty; unit names additionally compare the
// character-class skeleton of both strings, which separates visually similar
// names that differ in script.
//
// Vocabularies are immutable once loaded and a Corrector may be shared by any
// number of goroutines.
package textmatch
