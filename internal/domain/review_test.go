package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReview_TransitionTo(t *testing.T) {
	tests := []struct {
		name      string
		from      ReviewStatus
		to        ReviewStatus
		wantErr   bool
		wantState ReviewStatus
	}{
		{"draft to in_review", ReviewStatusDraft, ReviewStatusInReview, false, ReviewStatusInReview},
		{"in_review to finalized", ReviewStatusInReview, ReviewStatusFinalized, false, ReviewStatusFinalized},
		{"in_review back to draft", ReviewStatusInReview, ReviewStatusDraft, false, ReviewStatusDraft},
		{"finalized reopened to draft", ReviewStatusFinalized, ReviewStatusDraft, false, ReviewStatusDraft},

		{"draft to finalized", ReviewStatusDraft, ReviewStatusFinalized, true, ReviewStatusDraft},
		{"finalized to in_review", ReviewStatusFinalized, ReviewStatusInReview, true, ReviewStatusFinalized},

		{"same status is a no-op", ReviewStatusDraft, ReviewStatusDraft, false, ReviewStatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := &Review{Status: tt.from}
			err := review.TransitionTo(tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "cannot transition")
				assert.Equal(t, tt.from, review.Status)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantState, review.Status)
			}
		})
	}
}

func TestReview_CanFinalize(t *testing.T) {
	tests := []struct {
		name    string
		review  Review
		wantErr bool
	}{
		{"ready", Review{Status: ReviewStatusInReview, Rating: 4, Summary: "solid half"}, false},
		{"still draft", Review{Status: ReviewStatusDraft, Rating: 4, Summary: "solid half"}, true},
		{"missing rating", Review{Status: ReviewStatusInReview, Summary: "solid half"}, true},
		{"rating out of range", Review{Status: ReviewStatusInReview, Rating: 6, Summary: "x"}, true},
		{"missing summary", Review{Status: ReviewStatusInReview, Rating: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.review.CanFinalize()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
