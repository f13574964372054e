package booking

import (
	"testing"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		ctx     WorkflowContext
		wantErr error
	}{
		{"load with loading workflow", StatusBooked, StatusLoaded, ContextLoading, nil},
		{"load from general edit", StatusBooked, StatusLoaded, ContextGeneral, shared.ErrWrongWorkflowContext},
		{"load from unloading workflow", StatusBooked, StatusLoaded, ContextUnloading, shared.ErrWrongWorkflowContext},
		{"dispatch from loading", StatusLoaded, StatusInTransit, ContextLoading, nil},
		{"dispatch from general", StatusLoaded, StatusInTransit, ContextGeneral, nil},
		{"dispatch from unloading", StatusLoaded, StatusInTransit, ContextUnloading, shared.ErrWrongWorkflowContext},
		{"unload with unloading", StatusInTransit, StatusUnloaded, ContextUnloading, nil},
		{"unload from general", StatusInTransit, StatusUnloaded, ContextGeneral, shared.ErrWrongWorkflowContext},
		{"deliver from unloading", StatusUnloaded, StatusDelivered, ContextUnloading, nil},
		{"deliver from general", StatusUnloaded, StatusDelivered, ContextGeneral, nil},
		{"cancel booked", StatusBooked, StatusCancelled, ContextGeneral, nil},
		{"cancel loaded", StatusLoaded, StatusCancelled, ContextGeneral, nil},
		{"cancel loaded from loading", StatusLoaded, StatusCancelled, ContextLoading, shared.ErrWrongWorkflowContext},
		{"skip to delivered", StatusBooked, StatusDelivered, ContextGeneral, shared.ErrInvalidTransition},
		{"cancel in transit", StatusInTransit, StatusCancelled, ContextGeneral, shared.ErrInvalidTransition},
		{"move backwards", StatusLoaded, StatusBooked, ContextLoading, shared.ErrInvalidTransition},
		{"leave delivered", StatusDelivered, StatusBooked, ContextGeneral, shared.ErrInvalidTransition},
		{"leave cancelled", StatusCancelled, StatusLoaded, ContextLoading, shared.ErrInvalidTransition},
		{"self loop", StatusBooked, StatusBooked, ContextGeneral, shared.ErrInvalidTransition},
		{"unknown target", StatusBooked, Status("lost"), ContextGeneral, shared.ErrInvalidInput},
		{"unknown context", StatusBooked, StatusLoaded, WorkflowContext("scan"), shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transition(tt.from, tt.to, tt.ctx)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransition_WrongContextIsDistinct(t *testing.T) {
	err := Transition(StatusBooked, StatusLoaded, ContextGeneral)
	assert.ErrorIs(t, err, shared.ErrWrongWorkflowContext)
	assert.NotErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "loading")
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusInTransit.IsTerminal())

	assert.True(t, StatusBooked.CanTransitionTo(StatusLoaded))
	assert.False(t, StatusBooked.CanTransitionTo(StatusInTransit))

	assert.Equal(t, []WorkflowContext{ContextLoading, ContextGeneral}, AllowedContexts(StatusLoaded, StatusInTransit))
	assert.Nil(t, AllowedContexts(StatusDelivered, StatusBooked))
}
