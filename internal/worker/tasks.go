package worker

import (
	"context"

	"github.com/tandemhq/tandem/internal/service"
)

// SessionCleanupTask deletes expired login sessions.
type SessionCleanupTask struct {
	Users service.UserService
}

func (t *SessionCleanupTask) Name() string { return "session_cleanup" }

func (t *SessionCleanupTask) Run(ctx context.Context) (int64, error) {
	return t.Users.DeleteExpiredSessions(ctx)
}

// FeedbackExpiryTask closes feedback requests whose share links have
// expired, so stale links stop accepting responses even if nobody
// visits them.
type FeedbackExpiryTask struct {
	Feedback service.FeedbackService
}

func (t *FeedbackExpiryTask) Name() string { return "feedback_expiry" }

func (t *FeedbackExpiryTask) Run(ctx context.Context) (int64, error) {
	return t.Feedback.CloseExpired(ctx)
}
