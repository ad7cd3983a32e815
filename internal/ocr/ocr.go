// Package ocr reads the player and unit name fields of a pre-match frame.
//
// Each field region is cropped, binarized for recognition, passed to a
// Recognizer, and corrected against the closed vocabulary for its category.
// Recognition trouble never fails a frame; it only leaves fields unknown.
package ocr

import (
	"context"
	"image"
)

// Recognizer turns a prepared field image into raw text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

// Recognize implements Recognizer.
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}
