package imaging

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"matchtracker/internal/config"
)

func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*37 + y*11) % 256)})
		}
	}
	return img
}

func ramp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*10 + y*5)})
		}
	}
	return img
}

func fill(w, h int, shade uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	return img
}

func TestNormalizedCorrelationIdentical(t *testing.T) {
	img := gradient(16, 9)
	if got := NormalizedCorrelation(img, img); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical images: got %v want 1", got)
	}
}

func TestNormalizedCorrelationIgnoresBrightnessShift(t *testing.T) {
	a := gradient(8, 8)
	b := image.NewGray(a.Bounds())
	for i, p := range a.Pix {
		b.Pix[i] = p / 2
	}
	brighter := image.NewGray(b.Bounds())
	for i, p := range b.Pix {
		brighter.Pix[i] = p + 40
	}
	got := NormalizedCorrelation(b, brighter)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("shifted image: got %v want 1", got)
	}
}

func TestNormalizedCorrelationInverted(t *testing.T) {
	a := gradient(8, 8)
	inv := Invert(a)
	if got := NormalizedCorrelation(a, inv); got > -0.99 {
		t.Fatalf("inverted image: got %v want about -1", got)
	}
}

func TestNormalizedCorrelationFlatImages(t *testing.T) {
	if got := NormalizedCorrelation(fill(4, 4, 10), fill(4, 4, 10)); got != 1 {
		t.Fatalf("equal flat images: got %v", got)
	}
	if got := NormalizedCorrelation(fill(4, 4, 10), fill(4, 4, 20)); got != 0 {
		t.Fatalf("different flat images: got %v", got)
	}
	if got := NormalizedCorrelation(fill(4, 4, 10), gradient(4, 4)); got != 0 {
		t.Fatalf("flat vs textured: got %v", got)
	}
	if got := NormalizedCorrelation(fill(4, 4, 10), fill(5, 4, 10)); got != 0 {
		t.Fatalf("size mismatch: got %v", got)
	}
}

func TestTemplateMatcherResizesRegion(t *testing.T) {
	template := ramp(20, 10)
	big := Resize(template, 80, 40)
	score := TemplateMatcher{}.Score(big, template)
	if score < 0.9 {
		t.Fatalf("upscaled template: got %v want >= 0.9", score)
	}
	if score > 1 {
		t.Fatalf("score above 1: %v", score)
	}
	if got := (TemplateMatcher{}).Score(Invert(template), template); got != 0 {
		t.Fatalf("negative correlation should clamp to 0, got %v", got)
	}
	if got := (TemplateMatcher{}).Score(nil, template); got != 0 {
		t.Fatalf("nil region: got %v", got)
	}
}

func TestTemplateMatcherOnSubImage(t *testing.T) {
	frame := fill(64, 64, 0)
	tmpl := gradient(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			frame.SetGray(24+x, 24+y, tmpl.GrayAt(x, y))
		}
	}
	region := frame.SubImage(image.Rect(24, 24, 40, 40))
	if got := (TemplateMatcher{}).Score(region, tmpl); math.Abs(got-1) > 1e-9 {
		t.Fatalf("sub image: got %v want 1", got)
	}
}

func TestGrayCompactsSubImage(t *testing.T) {
	img := gradient(10, 10)
	sub := img.SubImage(image.Rect(2, 3, 6, 8)).(*image.Gray)
	g := Gray(sub)
	if g.Bounds() != image.Rect(0, 0, 4, 5) || g.Stride != 4 {
		t.Fatalf("unexpected bounds %v stride %d", g.Bounds(), g.Stride)
	}
	if g.GrayAt(0, 0) != img.GrayAt(2, 3) || g.GrayAt(3, 4) != img.GrayAt(5, 7) {
		t.Fatal("pixel mismatch after compaction")
	}
}

func TestPrepareForOCRProducesBinaryUpscaledImage(t *testing.T) {
	// White text on dark background.
	src := fill(10, 4, 20)
	for x := 3; x < 7; x++ {
		src.SetGray(x, 1, color.Gray{Y: 240})
		src.SetGray(x, 2, color.Gray{Y: 240})
	}
	opts := config.Preprocess{Scale: 4, Alpha: 1, Beta: 10, Threshold: 127, Sharpen: true}
	out := PrepareForOCR(src, opts)

	if out.Bounds() != image.Rect(0, 0, 40, 16) {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	for i, p := range out.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel %d is %d, want 0 or 255", i, p)
		}
	}
	// Background becomes white, text becomes black.
	if out.GrayAt(0, 0).Y != 255 {
		t.Fatalf("background: got %d want 255", out.GrayAt(0, 0).Y)
	}
	if out.GrayAt(20, 6).Y != 0 {
		t.Fatalf("text: got %d want 0", out.GrayAt(20, 6).Y)
	}
}

func TestAdjustContrastSaturates(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix = []uint8{0, 100, 250}
	out := adjustContrast(src, 2, -10)
	want := []uint8{0, 190, 255}
	if !bytes.Equal(out.Pix, want) {
		t.Fatalf("got %v want %v", out.Pix, want)
	}
}

func TestBinarizeThresholdIsExclusive(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix = []uint8{126, 127, 128}
	out := binarize(src, 127)
	want := []uint8{0, 0, 255}
	if !bytes.Equal(out.Pix, want) {
		t.Fatalf("got %v want %v", out.Pix, want)
	}
}

func TestLoadRoundTripsPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_00000.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	src := gradient(6, 4)
	if err := EncodePNG(f, src); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g := Gray(img)
	if !bytes.Equal(g.Pix, src.Pix) {
		t.Fatal("decoded pixels differ")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
