package screen

import (
	"image"
	"log/slog"
	"sort"

	"matchtracker/internal/imaging"
	"matchtracker/internal/logging"
)

// Similarity scores a frame region against a reference template. Scores are
// in [0, 1]; implementations normalize the region to the template size.
type Similarity interface {
	Score(region, template image.Image) float64
}

// TemplateLoader reads a reference template image.
type TemplateLoader func(path string) (image.Image, error)

// DetectorSpec configures detection of one positive label.
type DetectorSpec struct {
	Label        Label
	TemplatePath string
	Region       Region
	Threshold    float64
}

type detector struct {
	label     Label
	template  image.Image
	region    Region
	threshold float64
}

// priority fixes the evaluation order. Labels are not mutually exclusive by
// construction, so the order decides ties.
var priority = map[Label]int{
	LabelMatching:   0,
	LabelResultWin:  1,
	LabelResultLose: 2,
}

// Classifier labels frames by template similarity.
type Classifier struct {
	detectors  []detector
	similarity Similarity
	logger     *slog.Logger
}

// NewClassifier loads every template and builds the detectors. A spec whose
// template path is empty or fails to load is skipped with a warning; its label
// can no longer be produced. Specs for labels other than matching, win, and
// lose are ignored.
func NewClassifier(specs []DetectorSpec, similarity Similarity, load TemplateLoader, logger *slog.Logger) *Classifier {
	logger = logging.NewComponentLogger(logger, "screen")
	c := &Classifier{similarity: similarity, logger: logger}

	for _, spec := range specs {
		if _, ok := priority[spec.Label]; !ok {
			logger.Debug("ignoring detector for non-positive label", logging.String("label", string(spec.Label)))
			continue
		}
		if spec.TemplatePath == "" {
			logging.WarnWithContext(logger, "no template configured; label disabled", "template_missing",
				logging.String("label", string(spec.Label)),
				logging.String(logging.FieldErrorHint, "set the template path in the [screen] config section"),
				logging.String(logging.FieldImpact, "frames of this screen type will be labelled other"))
			continue
		}
		tmpl, err := load(spec.TemplatePath)
		if err != nil || tmpl == nil || tmpl.Bounds().Empty() {
			attrs := []logging.Attr{
				logging.String("label", string(spec.Label)),
				logging.String("template", spec.TemplatePath),
				logging.String(logging.FieldErrorHint, "check the template path and image format"),
				logging.String(logging.FieldImpact, "frames of this screen type will be labelled other"),
			}
			if err != nil {
				attrs = append(attrs, logging.Error(err))
			}
			logging.WarnWithContext(logger, "template unreadable; label disabled", "template_load_failed", attrs...)
			continue
		}
		c.detectors = append(c.detectors, detector{
			label:     spec.Label,
			template:  tmpl,
			region:    spec.Region,
			threshold: spec.Threshold,
		})
	}

	sort.SliceStable(c.detectors, func(i, j int) bool {
		return priority[c.detectors[i].label] < priority[c.detectors[j].label]
	})
	return c
}

// Enabled reports whether label can be produced by this classifier.
func (c *Classifier) Enabled(label Label) bool {
	for _, d := range c.detectors {
		if d.label == label {
			return true
		}
	}
	return false
}

// Classify returns the first label, in priority order, whose region
// similarity meets its threshold, or LabelOther.
func (c *Classifier) Classify(img image.Image) Label {
	if img == nil {
		return LabelOther
	}
	bounds := img.Bounds()
	for _, d := range c.detectors {
		rect := d.region.Resolve(bounds)
		if rect.Empty() {
			continue
		}
		region := imaging.Crop(img, rect)
		score := c.similarity.Score(region, d.template)
		if score >= d.threshold {
			return d.label
		}
	}
	return LabelOther
}
