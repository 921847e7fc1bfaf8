package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"conflict", Conflict(cause), FailureConflict},
		{"connectivity", Connectivity(cause), FailureConnectivity},
		{"rejected", Rejected(cause), FailureRejected},
		{"wrapped save error", fmt.Errorf("save: %w", Conflict(cause)), FailureConflict},
		{"plain error defaults to connectivity", cause, FailureConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSaveError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Conflict(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the underlying cause")
	}
	var se *SaveError
	if !errors.As(error(err), &se) || se.Kind != FailureConflict {
		t.Errorf("errors.As = %+v, want conflict SaveError", se)
	}
}

func TestSaverState_Terminal(t *testing.T) {
	for _, s := range []SaverState{StateUninitialized, StateInitializing, StateIdle, StateSaving, StateRecovering} {
		if s.Terminal() {
			t.Errorf("%v.Terminal() = true, want false", s)
		}
	}
	for _, s := range []SaverState{StateFailed, StateDestroyed} {
		if !s.Terminal() {
			t.Errorf("%v.Terminal() = false, want true", s)
		}
	}
}
