// Package service contains the business logic layer.
//
// Services orchestrate repositories, external APIs and domain logic:
// input validation, business rules, transaction coordination, and
// translation of database errors into domain errors.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost 12 keeps hashing around a quarter second on current
	// hardware, slow enough for credential stuffing to hurt.
	BcryptCost = 12

	// SessionTokenBytes of entropy, hex-encoded to 64 chars.
	SessionTokenBytes = 32

	// SessionDuration balances security and convenience for B2B use.
	SessionDuration = 7 * 24 * time.Hour

	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt's input limit
)

// UserService defines user and session operations.
type UserService interface {
	// Register creates a tenant and its first tenant_admin user in one
	// transaction. Returns domain.ECONFLICT if the email is taken.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login authenticates a user and creates a session.
	// Returns domain.EUNAUTHORIZED for invalid credentials.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout invalidates a session by raw token. Idempotent.
	Logout(ctx context.Context, token string) error

	// GetByID returns domain.ENOTFOUND if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetBySessionToken validates a session token and returns its user.
	// Returns domain.EUNAUTHORIZED if invalid or expired.
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)

	// ChangePassword verifies the current password, stores the new
	// hash, and invalidates all existing sessions.
	ChangePassword(ctx context.Context, params domain.PasswordChangeParams) error

	// DeleteExpiredSessions is a periodic cleanup entry point.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type userService struct {
	db      *sql.DB
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, queries *repository.Queries, logger *slog.Logger) UserService {
	return &userService{db: db, queries: queries, logger: logger}
}

func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "user.register"

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError(op, "email", "a valid email is required")
	}
	if err := validatePassword(op, params.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.TenantName) == "" {
		return nil, domain.NewValidationError(op, "tenantName", "organization name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	tenant, err := qtx.CreateTenant(ctx, &domain.Tenant{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(params.TenantName),
		SubscriptionTier: domain.TierFreeVIP,
		IsActive:         true,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create tenant")
	}

	user, err := qtx.CreateUser(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(params.Name),
		Role:         domain.RoleTenantAdmin,
		TenantID:     &tenant.ID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "an account with this email already exists")
		}
		return nil, domain.Internal(err, op, "failed to create user")
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Internal(err, op, "failed to commit registration")
	}

	s.logger.Info("tenant registered",
		"tenant_id", tenant.ID,
		"user_id", user.ID,
		"tier", tenant.SubscriptionTier,
	)
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "user.login"

	user, err := s.queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if repository.IsNotFound(err) {
			// Burn a comparison anyway so timing doesn't reveal
			// whether the account exists.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$00000000000000000000000000000000000000000000000000000"), []byte(password))
			return nil, domain.Unauthorized(op, "invalid email or password")
		}
		return nil, domain.Internal(err, op, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Unauthorized(op, "invalid email or password")
	}

	token, tokenHash, err := newSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate session token")
	}

	err = s.queries.CreateSession(ctx, &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(SessionDuration),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create session")
	}

	return &domain.LoginResult{User: user, Token: token}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	const op = "user.logout"
	if err := s.queries.DeleteSessionByTokenHash(ctx, hashToken(token)); err != nil {
		return domain.Internal(err, op, "failed to delete session")
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get"
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load user")
	}
	return user, nil
}

func (s *userService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "user.session"
	user, err := s.queries.GetUserBySessionTokenHash(ctx, hashToken(token), time.Now())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.Unauthorized(op, "session is invalid or expired")
		}
		return nil, domain.Internal(err, op, "failed to resolve session")
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, params domain.PasswordChangeParams) error {
	const op = "user.change_password"

	if err := validatePassword(op, params.NewPassword); err != nil {
		return err
	}

	user, err := s.queries.GetUserByID(ctx, params.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.NotFound(op, "user", params.UserID.String())
		}
		return domain.Internal(err, op, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.CurrentPassword)); err != nil {
		return domain.Unauthorized(op, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), BcryptCost)
	if err != nil {
		return domain.Internal(err, op, "failed to hash password")
	}

	if err := s.queries.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return domain.Internal(err, op, "failed to update password")
	}

	// Every existing session dies with the old password.
	if err := s.queries.DeleteSessionsByUserID(ctx, user.ID); err != nil {
		return domain.Internal(err, op, "failed to invalidate sessions")
	}
	return nil
}

func (s *userService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	const op = "user.cleanup_sessions"
	n, err := s.queries.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, domain.Internal(err, op, "failed to delete expired sessions")
	}
	return n, nil
}

func validatePassword(op, password string) error {
	if len(password) < MinPasswordLength {
		return domain.NewValidationError(op, "password", "password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return domain.NewValidationError(op, "password", "password must be at most 72 characters")
	}
	return nil
}

// newSessionToken returns a raw token and its SHA-256 hex hash.
func newSessionToken() (token, tokenHash string, err error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
