package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/logger"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("tesseract support not available in this build")

// Snippet is the crop of one detected text element.
type Snippet struct {
	// Box is the element's box in drawing coordinates.
	Box   imaging.Box
	Image image.Image
}

// Recognizer reads the text of one snippet. An empty result is valid.
type Recognizer interface {
	Recognize(ctx context.Context, s Snippet) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, s Snippet) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, s Snippet) (string, error) {
	return f(ctx, s)
}

// StaticRecognizer answers from a fixed box to text table. Boxes not in the
// table read as empty text.
type StaticRecognizer map[imaging.Box]string

// Recognize implements Recognizer.
func (r StaticRecognizer) Recognize(ctx context.Context, s Snippet) (string, error) {
	return r[s.Box], ctx.Err()
}

// Options controls snippet preparation.
type Options struct {
	// Preprocess converts snippets to high-contrast grayscale.
	Preprocess bool
	// MinHeight upscales snippets lower than this many pixels; 0 disables.
	MinHeight int
}

// Prepare applies the configured preprocessing to a snippet.
func Prepare(img image.Image, opts Options) image.Image {
	if !opts.Preprocess {
		return img
	}
	var out image.Image = adjust.Contrast(effect.Grayscale(img), 0.4)
	return imaging.ScaleSnippet(out, opts.MinHeight)
}

// RecognizeElements crops every detection from img, runs rec on it and
// returns the detections with their text, in input order.
//
// Any recognizer failure or a box entirely outside the image aborts with a
// recognize StageFailure. Cancellation is checked between elements.
func RecognizeElements(ctx context.Context, rec Recognizer, img image.Image, dets []detection.GlobalDetection, opts Options) ([]detection.TextElement, error) {
	log := logger.Module("recognizer")

	out := make([]detection.TextElement, 0, len(dets))
	empty := 0
	for _, det := range dets {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewStageFailure(errors.StageRecognize, fmt.Errorf("%w: %w", errors.ErrCancelled, err))
		}
		crop, err := imaging.CropSnippet(img, det.Box)
		if err != nil {
			return nil, errors.NewStageFailure(errors.StageRecognize, fmt.Errorf("element %s: %w", det.GUID, err))
		}
		text, err := rec.Recognize(ctx, Snippet{Box: det.Box, Image: Prepare(crop, opts)})
		if err != nil {
			return nil, errors.NewStageFailure(errors.StageRecognize, fmt.Errorf("element %s: %w", det.GUID, err))
		}
		if text == "" {
			empty++
		}
		out = append(out, detection.TextElement{GlobalDetection: det, Text: text})
	}

	log.Debug("recognized elements", "elements", len(out), "empty", empty)
	return out, nil
}
