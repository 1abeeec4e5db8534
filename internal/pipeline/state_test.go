package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghjez/ba-backend/internal/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateTiled, true},
		{StateTiled, StateDetected, true},
		{StateParsed, StateExported, true},
		{StateTiled, StateMerged, false},
		{StateMerged, StateDetected, false},
		{StateDetected, StateFailed, true},
		{StateExported, StateFailed, false},
		{StateFailed, StateTiled, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "recognized", StateRecognized.String())
	assert.Equal(t, "state(42)", State(42).String())

	data, err := json.Marshal(Transition{State: StateFailed, Stage: errors.StageParse})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"failed"`)
	assert.Contains(t, string(data), `"stage":"parse"`)
}

func TestImageResult_AdvancePanicsOnSkip(t *testing.T) {
	res := &ImageResult{}
	res.advance(StateTiled, 0)
	assert.Panics(t, func() { res.advance(StateMerged, 0) })
}

func TestImageResult_Fail(t *testing.T) {
	res := &ImageResult{}
	res.advance(StateTiled, 0)
	res.fail(errors.StageDetect, errors.New("boom"), 0)

	assert.Equal(t, StateFailed, res.State)
	stage, ok := res.FailedStage()
	require.True(t, ok)
	assert.Equal(t, errors.StageDetect, stage)

	// Terminal states ignore further failures.
	res.fail(errors.StageParse, errors.New("again"), 0)
	assert.Len(t, res.History, 2)
}
