package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"matchtracker/internal/config"
	"matchtracker/internal/imaging"
	"matchtracker/internal/logging"
	"matchtracker/internal/match"
	"matchtracker/internal/screen"
	"matchtracker/internal/textmatch"
)

// FieldRegion locates one field on the pre-match screen.
type FieldRegion struct {
	Name     string
	Category textmatch.Category
	Region   screen.Region
}

// FieldRegions converts the configured regions. Fields with no region are
// left out and never appear in readings.
func FieldRegions(fields config.Fields) ([]FieldRegion, error) {
	var out []FieldRegion
	for _, nr := range fields.Ordered() {
		if len(nr.ROI) == 0 {
			continue
		}
		region, err := screen.RegionFromRatios(nr.ROI)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", nr.Name, err)
		}
		out = append(out, FieldRegion{
			Name:     nr.Name,
			Category: textmatch.CategoryForField(nr.Name),
			Region:   region,
		})
	}
	return out, nil
}

// Extractor reads fields from frames on disk. It implements
// match.FieldExtractor.
type Extractor struct {
	fields     []FieldRegion
	recognizer Recognizer
	corrector  *textmatch.Corrector
	decode     screen.Decoder
	preprocess config.Preprocess
	logger     *slog.Logger
}

// NewExtractor wires the recognition pipeline. decode defaults to
// imaging.Load.
func NewExtractor(fields []FieldRegion, recognizer Recognizer, corrector *textmatch.Corrector, preprocess config.Preprocess, decode screen.Decoder, logger *slog.Logger) *Extractor {
	if decode == nil {
		decode = imaging.Load
	}
	return &Extractor{
		fields:     fields,
		recognizer: recognizer,
		corrector:  corrector,
		decode:     decode,
		preprocess: preprocess,
		logger:     logging.NewComponentLogger(logger, "ocr"),
	}
}

// Extract implements match.FieldExtractor.
func (e *Extractor) Extract(ctx context.Context, frame screen.Frame) (match.Reading, error) {
	img, err := e.decode(frame.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", screen.ErrFrameUnreadable, frame.Name(), err)
	}
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldFrame, frame.Name()))

	reading := make(match.Reading, len(e.fields))
	for _, field := range e.fields {
		value, err := e.readField(ctx, img, field)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.WarnWithContext(logger, "field recognition failed", "ocr_failed",
				logging.String("field", field.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the tesseract install and language data"),
				logging.String(logging.FieldImpact, "field recorded as unknown"),
			)
		}
		reading[field.Name] = value
	}
	return reading, nil
}

func (e *Extractor) readField(ctx context.Context, img image.Image, field FieldRegion) (string, error) {
	rect := field.Region.Resolve(img.Bounds())
	if rect.Empty() {
		return "", nil
	}
	prepared := imaging.PrepareForOCR(imaging.Crop(img, rect), e.preprocess)
	raw, err := e.recognizer.Recognize(ctx, prepared)
	if err != nil {
		return "", err
	}
	value, ok := e.corrector.Correct(raw, field.Category)
	e.logger.Debug("field corrected",
		logging.String("field", field.Name),
		logging.String("raw", raw),
		logging.String("value", value),
		logging.Bool("matched", ok),
	)
	if !ok {
		return "", nil
	}
	return value, nil
}
