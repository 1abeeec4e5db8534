// Package errors provides the typed failures of the extraction pipeline.
//
// Two kinds of failure leave the core:
//
//   - InputError: the image or the tile grid cannot be processed at all
//     (unreadable file, empty tile set, inconsistent grid geometry).
//   - StageFailure: an external collaborator (detector, recognizer) failed or
//     returned malformed data while a specific stage was running.
//
// Both carry an ErrorCategory for grouping in logs and metrics, and both
// unwrap to their cause so callers can use errors.Is and errors.As.
//
// Data-quality conditions (low confidence detections, clustering noise,
// short fields, rooms without name and code) are filtered silently and never
// produce an error from this package.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryInput      ErrorCategory = "input"
	CategoryValidation ErrorCategory = "validation"
	CategoryFileIO     ErrorCategory = "file-io"
	CategoryDetection  ErrorCategory = "detection"
	CategoryRecognize  ErrorCategory = "recognition"
	CategoryNetwork    ErrorCategory = "network"
	CategoryParsing    ErrorCategory = "file-parsing"
	CategoryExport     ErrorCategory = "export"
	CategoryConfig     ErrorCategory = "configuration"
	CategoryCancelled  ErrorCategory = "cancellation"
	CategoryGeneric    ErrorCategory = "generic"
)

// CategorizedError is an interface for errors that can specify their own category
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

// Stage names a step of the per-image pipeline.
type Stage string

const (
	StageLoad      Stage = "load"
	StageTile      Stage = "tile"
	StageDetect    Stage = "detect"
	StageMerge     Stage = "merge"
	StageRecognize Stage = "recognize"
	StageCluster   Stage = "cluster"
	StageAssemble  Stage = "assemble"
	StageParse     Stage = "parse"
	StageExport    Stage = "export"
)

// InputError reports input the pipeline refuses to process.
type InputError struct {
	Op     string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// ErrorCategory implements CategorizedError.
func (e *InputError) ErrorCategory() ErrorCategory { return CategoryInput }

// NewInputError creates an InputError for operation op.
func NewInputError(op, reason string, err error) *InputError {
	return &InputError{Op: op, Reason: reason, Err: err}
}

// StageFailure reports a failed pipeline stage and its cause.
type StageFailure struct {
	Stage    Stage
	Cause    error
	Category ErrorCategory
}

func (e *StageFailure) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("stage %s failed", e.Stage)
	}
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageFailure) Unwrap() error { return e.Cause }

// ErrorCategory implements CategorizedError.
func (e *StageFailure) ErrorCategory() ErrorCategory {
	if e.Category != "" {
		return e.Category
	}
	return CategoryGeneric
}

// NewStageFailure wraps cause as a failure of stage. A cause that already is
// a StageFailure or an InputError is returned unchanged so the innermost
// stage is reported and input errors keep their type.
func NewStageFailure(stage Stage, cause error) error {
	var sf *StageFailure
	if As(cause, &sf) || IsInputError(cause) {
		return cause
	}
	return &StageFailure{Stage: stage, Cause: cause, Category: categoryFor(stage, cause)}
}

func categoryFor(stage Stage, cause error) ErrorCategory {
	var ce CategorizedError
	if As(cause, &ce) {
		return ce.ErrorCategory()
	}
	if Is(cause, ErrCancelled) {
		return CategoryCancelled
	}
	switch stage {
	case StageDetect, StageMerge:
		return CategoryDetection
	case StageRecognize:
		return CategoryRecognize
	case StageExport:
		return CategoryExport
	case StageLoad:
		return CategoryFileIO
	}
	return CategoryGeneric
}

// ErrCancelled marks work abandoned because its context ended.
var ErrCancelled = stderrors.New("operation cancelled")

// IsInputError reports whether err is or wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return As(err, &ie)
}

// StageOf returns the failing stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var sf *StageFailure
	if As(err, &sf) {
		return sf.Stage, true
	}
	return "", false
}

// CategoryOf returns the category of err, or CategoryGeneric.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if As(err, &ce) {
		return ce.ErrorCategory()
	}
	return CategoryGeneric
}

// Is wraps the standard library errors.Is.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As wraps the standard library errors.As.
func As(err error, target any) bool { return stderrors.As(err, target) }

// New wraps the standard library errors.New.
func New(text string) error { return stderrors.New(text) }

// Join wraps the standard library errors.Join.
func Join(errs ...error) error { return stderrors.Join(errs...) }
