// Package match turns a classified frame sequence into match records.
//
// Scan walks the sequence once with a two-state machine (idle, collecting a
// pre-match group) and emits a Segment for every run of matching frames that
// is immediately followed by a result frame. Anything else (orphan runs,
// lone result frames, other frames) is dropped without error, since these
// are ordinary artifacts of fixed-interval sampling.
//
// Builder resolves each Segment into a Record: it picks the best frame of
// the group through a FieldExtractor, maps the result label to per-seat
// outcomes, and stamps the start time from the selected frame's index.
package match
