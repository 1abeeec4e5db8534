// Package ocr reads the text of detected room stamp elements.
//
// RecognizeElements crops each detection from the full drawing, optionally
// prepares the crop (grayscale, contrast, upscaling of small lettering) and
// passes it to a Recognizer. Every element keeps its identity; the
// recognizer only fills in the text.
//
// # Tesseract
//
// TesseractRecognizer wraps the Tesseract engine via gosseract/v2 and is
// only built with cgo on Linux. Other builds get a stub whose constructor
// returns ErrUnavailable. Tesseract and the language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-deu
//   - macOS: brew install tesseract tesseract-lang
//
// Room stamps on German drawings need "deu" for umlauts and ß.
//
// # Testing
//
// StaticRecognizer answers from a box to text table and stands in for the
// engine in tests and when texts are known up front.
package ocr
