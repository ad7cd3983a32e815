package match

import (
	"context"

	"matchtracker/internal/screen"
)

// Field keys in output column order.
const (
	FieldPlayer1Name = "player1_name"
	FieldPlayer2Name = "player2_name"
	FieldPlayer3Name = "player3_name"
	FieldPlayer4Name = "player4_name"
	FieldPlayer1Unit = "player1_unit"
	FieldPlayer2Unit = "player2_unit"
	FieldPlayer3Unit = "player3_unit"
	FieldPlayer4Unit = "player4_unit"
)

// AllFields lists every field a record can carry, in column order.
var AllFields = []string{
	FieldPlayer1Name, FieldPlayer2Name, FieldPlayer3Name, FieldPlayer4Name,
	FieldPlayer1Unit, FieldPlayer2Unit, FieldPlayer3Unit, FieldPlayer4Unit,
}

// Reading holds the corrected value of every attempted field on one frame.
// An unknown field maps to the empty string.
type Reading map[string]string

// Known counts the fields that resolved to a vocabulary entry.
func (r Reading) Known() int {
	n := 0
	for _, v := range r {
		if v != "" {
			n++
		}
	}
	return n
}

// Complete reports whether no attempted field is unknown. An empty reading
// is complete.
func (r Reading) Complete() bool {
	return r.Known() == len(r)
}

// FieldExtractor reads and corrects the fields of one pre-match frame.
// Recognition trouble yields unknown fields; an error means the frame itself
// could not be read and aborts the run.
type FieldExtractor interface {
	Extract(ctx context.Context, frame screen.Frame) (Reading, error)
}

// NoFields is the extractor used when recognition is disabled. Every frame
// is a complete read of zero fields.
type NoFields struct{}

// Extract implements FieldExtractor.
func (NoFields) Extract(context.Context, screen.Frame) (Reading, error) {
	return Reading{}, nil
}

// Reasons a frame was chosen from its group.
const (
	ReasonCompleteRead = "complete_read"
	ReasonMostKnown    = "most_known_fields"
)

// Selection is the frame chosen from a group, what was read from it, and
// which rule picked it.
type Selection struct {
	Frame   screen.Frame
	Reading Reading
	Reason  string
}

// SelectFrame reads the group's frames in order and stops at the first
// complete read. Otherwise it keeps the read with the most known fields,
// preferring the earliest frame on ties. Fields are never merged across
// frames.
func SelectFrame(ctx context.Context, group []screen.ClassifiedFrame, extractor FieldExtractor) (Selection, error) {
	var best Selection
	bestKnown := -1
	for _, cf := range group {
		if err := ctx.Err(); err != nil {
			return Selection{}, err
		}
		reading, err := extractor.Extract(ctx, cf.Frame)
		if err != nil {
			return Selection{}, err
		}
		if reading.Complete() {
			return Selection{Frame: cf.Frame, Reading: reading, Reason: ReasonCompleteRead}, nil
		}
		if known := reading.Known(); known > bestKnown {
			best = Selection{Frame: cf.Frame, Reading: reading, Reason: ReasonMostKnown}
			bestKnown = known
		}
	}
	return best, nil
}
