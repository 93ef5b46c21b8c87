package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackRequest_AcceptsResponses(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  FeedbackRequest
		want bool
	}{
		{"open and unexpired", FeedbackRequest{Status: FeedbackRequestOpen, ExpiresAt: now.Add(time.Hour)}, true},
		{"open but expired", FeedbackRequest{Status: FeedbackRequestOpen, ExpiresAt: now.Add(-time.Hour)}, false},
		{"closed", FeedbackRequest{Status: FeedbackRequestClosed, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.AcceptsResponses(now))
		})
	}
}

func TestFeedbackResponse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		resp    FeedbackResponse
		wantErr bool
	}{
		{"valid", FeedbackResponse{Rating: 4, Strengths: "clear communicator"}, false},
		{"improvement only", FeedbackResponse{Rating: 2, Improvement: "delegate more"}, false},
		{"rating too low", FeedbackResponse{Rating: 0, Strengths: "x"}, true},
		{"rating too high", FeedbackResponse{Rating: 6, Strengths: "x"}, true},
		{"no comments", FeedbackResponse{Rating: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resp.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
