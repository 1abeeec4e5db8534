//go:build !(cgo && linux)

package ocr

import "context"

// TesseractRecognizer is unavailable in builds without cgo on Linux.
type TesseractRecognizer struct{}

// NewTesseract always fails with ErrUnavailable in this build.
func NewTesseract(language, tessdata string) (*TesseractRecognizer, error) {
	return nil, ErrUnavailable
}

// Recognize implements Recognizer.
func (r *TesseractRecognizer) Recognize(ctx context.Context, s Snippet) (string, error) {
	return "", ErrUnavailable
}

// Close is a no-op.
func (r *TesseractRecognizer) Close() error { return nil }
