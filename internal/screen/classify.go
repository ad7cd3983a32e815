package screen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrFrameUnreadable reports a sampled frame that could not be decoded.
// The whole classification run fails; partial sequences are never returned.
var ErrFrameUnreadable = errors.New("frame unreadable")

// Decoder loads a sampled frame from disk.
type Decoder func(path string) (image.Image, error)

// Progress receives the number of frames classified so far.
type Progress func(done int)

// ClassifyAll labels every frame in parallel and returns the labels in frame
// order. workers <= 0 uses one worker per CPU.
func ClassifyAll(ctx context.Context, c *Classifier, frames []Frame, decode Decoder, workers int, progress Progress) ([]ClassifiedFrame, error) {
	if c == nil {
		return nil, errors.New("classifier is nil")
	}
	if decode == nil {
		return nil, errors.New("frame decoder is nil")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]ClassifiedFrame, len(frames))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, frame := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := decode(frame.Path)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrFrameUnreadable, frame.Name(), err)
			}
			out[i] = ClassifiedFrame{Frame: frame, Label: c.Classify(img)}
			n := done.Add(1)
			if progress != nil {
				progress(int(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
