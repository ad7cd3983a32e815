package match

import "matchtracker/internal/screen"

// Segment is one resolved match: the pre-match frames and the result frame
// that ended it.
type Segment struct {
	Group    []screen.ClassifiedFrame
	Terminal screen.ClassifiedFrame
}

type scanState int

const (
	stateIdle scanState = iota
	stateCollecting
)

func (s scanState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCollecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// scanner is the boundary state machine. Feed it labels in capture order;
// completed segments accumulate in order.
type scanner struct {
	state    scanState
	group    []screen.ClassifiedFrame
	segments []Segment
}

func (s *scanner) step(cf screen.ClassifiedFrame) {
	switch s.state {
	case stateIdle:
		if cf.Label == screen.LabelMatching {
			s.group = []screen.ClassifiedFrame{cf}
			s.state = stateCollecting
		}
		// Result and other frames outside a group are noise.
	case stateCollecting:
		switch {
		case cf.Label == screen.LabelMatching:
			s.group = append(s.group, cf)
		case cf.Label.IsTerminal():
			s.segments = append(s.segments, Segment{Group: s.group, Terminal: cf})
			s.reset()
		default:
			s.reset()
		}
	}
}

func (s *scanner) reset() {
	s.group = nil
	s.state = stateIdle
}

// Scan returns the match segments of seq in occurrence order. A matching
// run must be immediately followed by a result frame; a run broken by an
// other frame or cut off by the end of the sequence is discarded.
func Scan(seq []screen.ClassifiedFrame) []Segment {
	var s scanner
	for _, cf := range seq {
		s.step(cf)
	}
	return s.segments
}

// CountMatches returns the number of segments Scan would emit.
func CountMatches(seq []screen.ClassifiedFrame) int {
	return len(Scan(seq))
}
