package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackRequestStatus is the lifecycle of a 360° feedback request.
type FeedbackRequestStatus string

const (
	FeedbackRequestOpen   FeedbackRequestStatus = "open"
	FeedbackRequestClosed FeedbackRequestStatus = "closed"
)

// DefaultFeedbackLinkTTL is how long a share link stays valid.
const DefaultFeedbackLinkTTL = 30 * 24 * time.Hour

// FeedbackRequest is a solicitation for 360° feedback about an
// employee, shared through a public link. The link token is stored as
// a SHA-256 hash; the raw token is only returned once at creation.
type FeedbackRequest struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	EmployeeID  uuid.UUID
	CreatedBy   uuid.UUID
	Subject     string // e.g. "Q3 peer feedback for Dana"
	Prompt      string // Question shown to respondents
	TokenHash   string
	Status      FeedbackRequestStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	ClosedAt    *time.Time
	ResponseCnt int // Populated on list/read queries
}

// AcceptsResponses returns true if the request can still receive
// anonymous responses through its share link.
func (fr *FeedbackRequest) AcceptsResponses(now time.Time) bool {
	return fr.Status == FeedbackRequestOpen && now.Before(fr.ExpiresAt)
}

// FeedbackResponse is an anonymous submission against a request.
// No respondent identity is stored; anonymity is the product promise.
type FeedbackResponse struct {
	ID          uuid.UUID
	RequestID   uuid.UUID
	Rating      int // 1..5
	Strengths   string
	Improvement string
	CreatedAt   time.Time
}

// Validate checks a response before it is accepted.
func (r *FeedbackResponse) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("feedback.submit", "rating", "rating must be between 1 and 5")
	}
	if r.Strengths == "" && r.Improvement == "" {
		return NewValidationError("feedback.submit", "strengths", "at least one comment is required")
	}
	return nil
}

// FeedbackRequestCreateParams contains validated creation input.
type FeedbackRequestCreateParams struct {
	TenantID   uuid.UUID
	EmployeeID uuid.UUID
	CreatedBy  uuid.UUID
	Subject    string
	Prompt     string
	ExpiresIn  time.Duration // Zero means DefaultFeedbackLinkTTL
}

// FeedbackLink is returned once when a request is created: the public
// URL path component plus its expiry.
type FeedbackLink struct {
	Request  *FeedbackRequest
	RawToken string
}
