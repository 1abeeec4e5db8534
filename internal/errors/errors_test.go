package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputError(t *testing.T) {
	cause := fmt.Errorf("no such file")
	err := NewInputError("load image", "unreadable", cause)

	assert.Equal(t, "load image: unreadable: no such file", err.Error())
	assert.True(t, IsInputError(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CategoryInput, CategoryOf(err))
}

func TestStageFailure(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewStageFailure(StageDetect, cause)

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageDetect, stage)
	assert.Equal(t, CategoryDetection, CategoryOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "stage detect failed")
}

func TestStageFailure_KeepsInnermostStage(t *testing.T) {
	inner := NewStageFailure(StageRecognize, fmt.Errorf("tesseract crashed"))
	outer := NewStageFailure(StageExport, fmt.Errorf("run: %w", inner))

	stage, ok := StageOf(outer)
	require.True(t, ok)
	assert.Equal(t, StageRecognize, stage)
}

func TestStageFailure_PassesInputErrorThrough(t *testing.T) {
	in := NewInputError("tile", "empty tile set", nil)
	err := NewStageFailure(StageTile, in)

	assert.True(t, IsInputError(err))
	_, ok := StageOf(err)
	assert.False(t, ok)
}

func TestStageFailure_Cancelled(t *testing.T) {
	err := NewStageFailure(StageDetect, fmt.Errorf("%w: %w", ErrCancelled, context.Canceled))
	assert.Equal(t, CategoryCancelled, CategoryOf(err))
}
