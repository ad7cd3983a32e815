package match

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"matchtracker/internal/logging"
	"matchtracker/internal/screen"
)

// Builder resolves classified sequences into match records.
type Builder struct {
	extractor FieldExtractor
	interval  time.Duration
	logger    *slog.Logger
	onMatch   func()
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithProgress registers a callback invoked once per resolved match.
func WithProgress(fn func()) BuilderOption {
	return func(b *Builder) { b.onMatch = fn }
}

// NewBuilder constructs a Builder. A nil extractor means no fields are read.
func NewBuilder(extractor FieldExtractor, interval time.Duration, logger *slog.Logger, opts ...BuilderOption) *Builder {
	if extractor == nil {
		extractor = NoFields{}
	}
	b := &Builder{
		extractor: extractor,
		interval:  interval,
		logger:    logging.NewComponentLogger(logger, "match"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scans seq and returns one record per match, in occurrence order.
func (b *Builder) Build(ctx context.Context, seq []screen.ClassifiedFrame) ([]Record, error) {
	segments := Scan(seq)
	logger := logging.WithContext(ctx, b.logger)
	logger.Debug("match segments found",
		logging.Int("frames", len(seq)),
		logging.Int("matches", len(segments)),
	)

	records := make([]Record, 0, len(segments))
	for i, seg := range segments {
		rec, err := b.resolve(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i+1, err)
		}
		attrs := append(logging.Decision("frame_selection", rec.FrameName, rec.reason),
			logging.Int("match", i+1),
			logging.Int("known_fields", rec.known),
			logging.Int("group_frames", len(seg.Group)),
		)
		logger.LogAttrs(ctx, slog.LevelInfo, "pre-match frame selected", attrs...)
		records = append(records, rec.Record)
		if b.onMatch != nil {
			b.onMatch()
		}
	}
	return records, nil
}

type resolved struct {
	Record
	reason string
	known  int
}

func (b *Builder) resolve(ctx context.Context, seg Segment) (resolved, error) {
	sel, err := SelectFrame(ctx, seg.Group, b.extractor)
	if err != nil {
		return resolved{}, err
	}
	outcomes, err := Outcomes(seg.Terminal.Label)
	if err != nil {
		return resolved{}, err
	}
	var rec Record
	rec.setFields(sel.Reading)
	rec.setOutcomes(outcomes)
	rec.StartTime = FormatTimestamp(sel.Frame.Index, b.interval)
	rec.FrameName = sel.Frame.Name()
	return resolved{Record: rec, reason: sel.Reason, known: sel.Reading.Known()}, nil
}

// Timestamps lists the start of every match, taken from the first frame of
// its pre-match group. No fields are read.
func Timestamps(seq []screen.ClassifiedFrame, interval time.Duration) []Timestamp {
	segments := Scan(seq)
	out := make([]Timestamp, 0, len(segments))
	for i, seg := range segments {
		out = append(out, Timestamp{
			MatchNumber: i + 1,
			StartTime:   FormatTimestamp(seg.Group[0].Frame.Index, interval),
		})
	}
	return out
}
