package pipeline

import (
	"fmt"
	"time"

	"github.com/ghjez/ba-backend/internal/errors"
)

// State is the position of one drawing in the pipeline.
type State int

const (
	StatePending State = iota
	StateTiled
	StateDetected
	StateMerged
	StateRecognized
	StateClustered
	StateAssembled
	StateParsed
	StateExported
	StateFailed
)

var stateNames = [...]string{
	StatePending:    "pending",
	StateTiled:      "tiled",
	StateDetected:   "detected",
	StateMerged:     "merged",
	StateRecognized: "recognized",
	StateClustered:  "clustered",
	StateAssembled:  "assembled",
	StateParsed:     "parsed",
	StateExported:   "exported",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateExported || s == StateFailed
}

// CanTransition reports whether the pipeline may move from one state to
// another. Transitions are strictly forward by one step; any non-terminal
// state may fail.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return to == from+1
}

// Transition is one entry of a run's state history.
type Transition struct {
	State State         `json:"state"`
	At    time.Time     `json:"at"`
	Took  time.Duration `json:"took"`
	// Stage and Reason are set on the transition to StateFailed.
	Stage  errors.Stage `json:"stage,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// advance moves r to state s, recording how long the step took.
func (r *ImageResult) advance(s State, took time.Duration) {
	if !CanTransition(r.State, s) {
		panic(fmt.Sprintf("pipeline: invalid transition %s -> %s", r.State, s))
	}
	r.State = s
	r.History = append(r.History, Transition{State: s, At: time.Now(), Took: took})
}

// fail moves r to StateFailed, recording the failing stage and its cause.
func (r *ImageResult) fail(stage errors.Stage, err error, took time.Duration) {
	if r.State.Terminal() {
		return
	}
	r.State = StateFailed
	r.Err = err
	r.History = append(r.History, Transition{
		State:  StateFailed,
		At:     time.Now(),
		Took:   took,
		Stage:  stage,
		Reason: err.Error(),
	})
}

// FailedStage returns the stage recorded on the failure transition.
func (r *ImageResult) FailedStage() (errors.Stage, bool) {
	if r.State != StateFailed || len(r.History) == 0 {
		return "", false
	}
	return r.History[len(r.History)-1].Stage, true
}
