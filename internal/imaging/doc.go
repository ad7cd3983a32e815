// Package imaging holds the pixel-level primitives used by screen
// classification and field recognition: decoding sampled frames, grayscale
// conversion, resizing, normalized correlation against reference templates,
// and the binarization pipeline applied before text recognition.
package imaging
