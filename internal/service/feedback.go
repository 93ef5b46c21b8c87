package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// LinkNotifier sends the share link for a new feedback request to the
// employee's manager. Sending is best-effort; failures are logged and
// never fail the creation.
type LinkNotifier interface {
	SendFeedbackLink(ctx context.Context, to, subject, shareURL string) error
}

// FeedbackService manages 360° feedback requests and their anonymous
// public-link responses.
type FeedbackService interface {
	// CreateRequest creates a request and returns the raw share token.
	// The token is never retrievable again.
	CreateRequest(ctx context.Context, params domain.FeedbackRequestCreateParams) (*domain.FeedbackLink, error)

	// GetByToken resolves a share link for the public response form.
	// Returns domain.ENOTFOUND for unknown tokens and domain.EGONE for
	// closed or expired requests.
	GetByToken(ctx context.Context, token string) (*domain.FeedbackRequest, error)

	// SubmitResponse records an anonymous response through a share link.
	SubmitResponse(ctx context.Context, token string, response *domain.FeedbackResponse) error

	Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.FeedbackRequest, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*domain.FeedbackRequest, error)
	Close(ctx context.Context, tenantID, id uuid.UUID) error
	ListResponses(ctx context.Context, tenantID, requestID uuid.UUID) ([]*domain.FeedbackResponse, error)

	// CloseExpired is the background worker entry point.
	CloseExpired(ctx context.Context) (int64, error)
}

type feedbackService struct {
	queries  *repository.Queries
	notifier LinkNotifier
	baseURL  string
	logger   *slog.Logger
}

// NewFeedbackService creates a new FeedbackService. notifier may be nil
// when email is not configured.
func NewFeedbackService(queries *repository.Queries, notifier LinkNotifier, baseURL string, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		queries:  queries,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

func (s *feedbackService) CreateRequest(ctx context.Context, params domain.FeedbackRequestCreateParams) (*domain.FeedbackLink, error) {
	const op = "feedback.create"

	if strings.TrimSpace(params.Subject) == "" {
		return nil, domain.NewValidationError(op, "subject", "subject is required")
	}
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, domain.NewValidationError(op, "prompt", "prompt is required")
	}

	// The employee must exist in this tenant before a link is minted.
	employee, err := s.queries.GetEmployeeByID(ctx, params.TenantID, params.EmployeeID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "employee", params.EmployeeID.String())
		}
		return nil, domain.Internal(err, op, "failed to load employee")
	}

	ttl := params.ExpiresIn
	if ttl <= 0 {
		ttl = domain.DefaultFeedbackLinkTTL
	}

	// Share tokens use the same entropy and hashing scheme as session
	// tokens. Only the hash is stored.
	token, tokenHash, err := newSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate share token")
	}

	request, err := s.queries.CreateFeedbackRequest(ctx, &domain.FeedbackRequest{
		ID:         uuid.New(),
		TenantID:   params.TenantID,
		EmployeeID: params.EmployeeID,
		CreatedBy:  params.CreatedBy,
		Subject:    strings.TrimSpace(params.Subject),
		Prompt:     strings.TrimSpace(params.Prompt),
		TokenHash:  tokenHash,
		Status:     domain.FeedbackRequestOpen,
		ExpiresAt:  time.Now().Add(ttl),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create feedback request")
	}

	if s.notifier != nil {
		shareURL := s.baseURL + "/f/" + token
		if err := s.notifier.SendFeedbackLink(ctx, employee.Email, request.Subject, shareURL); err != nil {
			s.logger.Warn("failed to send feedback link email",
				"request_id", request.ID,
				"error", err,
			)
		}
	}

	return &domain.FeedbackLink{Request: request, RawToken: token}, nil
}

func (s *feedbackService) GetByToken(ctx context.Context, token string) (*domain.FeedbackRequest, error) {
	const op = "feedback.resolve_token"

	request, err := s.queries.GetFeedbackRequestByTokenHash(ctx, hashToken(token))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "feedback request", "")
		}
		return nil, domain.Internal(err, op, "failed to resolve share link")
	}
	if !request.AcceptsResponses(time.Now()) {
		return nil, domain.Gone(op, "this feedback request is no longer accepting responses")
	}
	return request, nil
}

func (s *feedbackService) SubmitResponse(ctx context.Context, token string, response *domain.FeedbackResponse) error {
	const op = "feedback.submit"

	request, err := s.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if err := response.Validate(); err != nil {
		return err
	}

	response.ID = uuid.New()
	response.RequestID = request.ID
	if err := s.queries.CreateFeedbackResponse(ctx, response); err != nil {
		return domain.Internal(err, op, "failed to store response")
	}
	return nil
}

func (s *feedbackService) Get(ctx context.Context, tenantID, id uuid.UUID) (*domain.FeedbackRequest, error) {
	const op = "feedback.get"
	request, err := s.queries.GetFeedbackRequestByID(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "feedback request", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load feedback request")
	}
	return request, nil
}

func (s *feedbackService) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.FeedbackRequest, error) {
	const op = "feedback.list"
	requests, err := s.queries.ListFeedbackRequestsByTenant(ctx, tenantID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list feedback requests")
	}
	return requests, nil
}

func (s *feedbackService) Close(ctx context.Context, tenantID, id uuid.UUID) error {
	const op = "feedback.close"
	if err := s.queries.CloseFeedbackRequest(ctx, tenantID, id, time.Now()); err != nil {
		if repository.IsNotFound(err) {
			return domain.NotFound(op, "open feedback request", id.String())
		}
		return domain.Internal(err, op, "failed to close feedback request")
	}
	return nil
}

func (s *feedbackService) ListResponses(ctx context.Context, tenantID, requestID uuid.UUID) ([]*domain.FeedbackResponse, error) {
	const op = "feedback.responses"

	// Scope check first so responses can't be read across tenants.
	if _, err := s.Get(ctx, tenantID, requestID); err != nil {
		return nil, err
	}

	responses, err := s.queries.ListFeedbackResponsesByRequest(ctx, requestID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list responses")
	}
	return responses, nil
}

func (s *feedbackService) CloseExpired(ctx context.Context) (int64, error) {
	const op = "feedback.close_expired"
	n, err := s.queries.CloseExpiredFeedbackRequests(ctx, time.Now())
	if err != nil {
		return 0, domain.Internal(err, op, "failed to close expired requests")
	}
	return n, nil
}
