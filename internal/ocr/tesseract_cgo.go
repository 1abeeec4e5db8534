//go:build cgo && linux

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer reads snippets with the Tesseract engine through
// gosseract. A single engine instance is shared and calls are serialized.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a recognizer for language (e.g. "deu"). tessdata
// overrides the training data directory; empty uses the system default.
func NewTesseract(language, tessdata string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if tessdata != "" {
		if err := client.SetTessdataPrefix(tessdata); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	// Every snippet holds one line of a room stamp.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &TesseractRecognizer{client: client}, nil
}

// Recognize implements Recognizer.
func (r *TesseractRecognizer) Recognize(ctx context.Context, s Snippet) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image); err != nil {
		return "", fmt.Errorf("failed to encode snippet: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the engine.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}
