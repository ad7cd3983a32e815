package screen

import (
	"fmt"
	"image"
)

// Region is a rectangle expressed as ratios of the frame width and height,
// so one configuration serves every capture resolution.
type Region struct {
	X1, Y1, X2, Y2 float64
}

// RegionFromRatios builds a Region from [x1, y1, x2, y2].
func RegionFromRatios(values []float64) (Region, error) {
	if len(values) != 4 {
		return Region{}, fmt.Errorf("region needs 4 ratios, got %d", len(values))
	}
	r := Region{X1: values[0], Y1: values[1], X2: values[2], Y2: values[3]}
	for _, v := range values {
		if v < 0 || v > 1 {
			return Region{}, fmt.Errorf("region ratio %v outside [0, 1]", v)
		}
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return Region{}, fmt.Errorf("region %v is empty", values)
	}
	return r, nil
}

// Resolve converts the ratios to absolute pixel bounds inside b, truncating
// toward the origin.
func (r Region) Resolve(b image.Rectangle) image.Rectangle {
	w := float64(b.Dx())
	h := float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(w*r.X1),
		b.Min.Y+int(h*r.Y1),
		b.Min.X+int(w*r.X2),
		b.Min.Y+int(h*r.Y2),
	)
	return rect.Intersect(b)
}
