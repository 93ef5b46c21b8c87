package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoal_TransitionTo(t *testing.T) {
	tests := []struct {
		name      string
		from      GoalStatus
		to        GoalStatus
		wantErr   bool
		wantState GoalStatus
	}{
		{"draft to active", GoalStatusDraft, GoalStatusActive, false, GoalStatusActive},
		{"active to completed", GoalStatusActive, GoalStatusCompleted, false, GoalStatusCompleted},
		{"active to abandoned", GoalStatusActive, GoalStatusAbandoned, false, GoalStatusAbandoned},
		{"completed reopened", GoalStatusCompleted, GoalStatusActive, false, GoalStatusActive},
		{"abandoned reopened", GoalStatusAbandoned, GoalStatusActive, false, GoalStatusActive},
		{"draft abandoned", GoalStatusDraft, GoalStatusAbandoned, false, GoalStatusAbandoned},

		{"draft to completed", GoalStatusDraft, GoalStatusCompleted, true, GoalStatusDraft},
		{"completed to abandoned", GoalStatusCompleted, GoalStatusAbandoned, true, GoalStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := &Goal{Status: tt.from}
			err := goal.TransitionTo(tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, goal.Status)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantState, goal.Status)
			}
		})
	}
}

func TestGoal_SetProgress(t *testing.T) {
	goal := &Goal{Status: GoalStatusActive}

	assert.NoError(t, goal.SetProgress(40))
	assert.Equal(t, 40, goal.Progress)
	assert.Equal(t, GoalStatusActive, goal.Status)

	// Hitting 100% completes an active goal automatically.
	assert.NoError(t, goal.SetProgress(100))
	assert.Equal(t, GoalStatusCompleted, goal.Status)

	assert.Error(t, goal.SetProgress(-1))
	assert.Error(t, goal.SetProgress(101))
}

func TestGoal_SetProgress_DraftStaysDraft(t *testing.T) {
	goal := &Goal{Status: GoalStatusDraft}
	assert.NoError(t, goal.SetProgress(100))
	assert.Equal(t, GoalStatusDraft, goal.Status)
}
