package imaging

import (
	"image"
	"math"

	"matchtracker/internal/config"
)

var sharpenKernel = [3][3]float64{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// PrepareForOCR turns a field crop into the high-contrast binary image the
// recognizer expects: grayscale, inverted (light text on dark becomes dark
// on light), upscaled, contrast-adjusted, optionally sharpened, then
// thresholded to pure black and white.
func PrepareForOCR(img image.Image, opts config.Preprocess) *image.Gray {
	g := Invert(img)

	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}
	b := g.Bounds()
	g = Resize(g, b.Dx()*scale, b.Dy()*scale)

	g = adjustContrast(g, opts.Alpha, opts.Beta)
	if opts.Sharpen {
		g = convolve3(g, sharpenKernel)
	}
	return binarize(g, opts.Threshold)
}

// adjustContrast applies alpha*p + beta to each pixel with saturation.
func adjustContrast(img *image.Gray, alpha, beta float64) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		out.Pix[i] = saturate(alpha*float64(p) + beta)
	}
	return out
}

// convolve3 applies a 3x3 kernel, replicating edge pixels past the border.
func convolve3(img *image.Gray, k [3][3]float64) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	at := func(x, y int) float64 {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return float64(img.Pix[y*img.Stride+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += k[ky+1][kx+1] * at(x+kx, y+ky)
				}
			}
			out.Pix[y*out.Stride+x] = saturate(sum)
		}
	}
	return out
}

// binarize maps pixels above threshold to white and the rest to black.
func binarize(img *image.Gray, threshold int) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		if int(p) > threshold {
			out.Pix[i] = 255
		}
	}
	return out
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
