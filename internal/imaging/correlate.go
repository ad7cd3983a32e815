package imaging

import (
	"image"
	"math"
)

// NormalizedCorrelation returns the normalized correlation coefficient
// between two equally sized grayscale images, in [-1, 1]. Mean intensity is
// subtracted from both before correlating, so uniform brightness shifts do
// not change the score. When either image is flat the coefficient is
// undefined; equal flat images score 1 and anything else 0.
func NormalizedCorrelation(a, b *image.Gray) float64 {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w != b.Bounds().Dx() || h != b.Bounds().Dy() || w == 0 || h == 0 {
		return 0
	}
	n := float64(w * h)

	var sumA, sumB float64
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := 0; x < w; x++ {
			sumA += float64(ra[x])
			sumB += float64(rb[x])
		}
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := 0; x < w; x++ {
			da := float64(ra[x]) - meanA
			db := float64(rb[x]) - meanB
			cov += da * db
			varA += da * da
			varB += db * db
		}
	}
	if varA == 0 || varB == 0 {
		if varA == 0 && varB == 0 && meanA == meanB {
			return 1
		}
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// TemplateMatcher scores a frame region against a template by resizing the
// region to the template's size and correlating the two in grayscale.
// Negative correlation is reported as 0.
type TemplateMatcher struct{}

// Score implements screen.Similarity.
func (TemplateMatcher) Score(region, template image.Image) float64 {
	if region == nil || template == nil {
		return 0
	}
	t := Gray(template)
	tw, th := t.Bounds().Dx(), t.Bounds().Dy()
	if tw == 0 || th == 0 || region.Bounds().Empty() {
		return 0
	}
	r := Resize(Gray(region), tw, th)
	score := NormalizedCorrelation(r, t)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
