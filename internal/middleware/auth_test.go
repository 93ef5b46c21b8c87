package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

// mockUserService implements service.UserService for middleware tests.
// Only GetBySessionToken matters here; the rest panic if reached.
type mockUserService struct {
	GetBySessionTokenFunc func(ctx context.Context, token string) (*domain.User, error)
}

func (m *mockUserService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	panic("not implemented")
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	panic("not implemented")
}

func (m *mockUserService) Logout(ctx context.Context, token string) error {
	panic("not implemented")
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	panic("not implemented")
}

func (m *mockUserService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return m.GetBySessionTokenFunc(ctx, token)
}

func (m *mockUserService) ChangePassword(ctx context.Context, params domain.PasswordChangeParams) error {
	panic("not implemented")
}

func (m *mockUserService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	panic("not implemented")
}

func TestWithUser_ValidSession(t *testing.T) {
	want := &domain.User{ID: uuid.New(), Email: "user@acme.test", Role: domain.RoleManager}
	mw := NewAuthMiddleware(&mockUserService{
		GetBySessionTokenFunc: func(ctx context.Context, token string) (*domain.User, error) {
			assert.Equal(t, "sometoken", token)
			return want, nil
		},
	}, testLogger(), false)

	var got *domain.User
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sometoken"})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
}

func TestWithUser_NoCookie(t *testing.T) {
	mw := NewAuthMiddleware(&mockUserService{
		GetBySessionTokenFunc: func(ctx context.Context, token string) (*domain.User, error) {
			t.Fatal("session lookup should not run without a cookie")
			return nil, nil
		},
	}, testLogger(), false)

	var called bool
	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, GetUser(r.Context()))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestWithUser_InvalidSessionClearsCookie(t *testing.T) {
	mw := NewAuthMiddleware(&mockUserService{
		GetBySessionTokenFunc: func(ctx context.Context, token string) (*domain.User, error) {
			return nil, domain.Unauthorized("user.session", "session is invalid or expired")
		},
	}, testLogger(), false)

	handler := mw.WithUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetUser(r.Context()))
	}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	handler.ServeHTTP(rec, r)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireUser(t *testing.T) {
	mw := NewAuthMiddleware(&mockUserService{}, testLogger(), false)

	t.Run("unauthenticated", func(t *testing.T) {
		var called bool
		handler := mw.RequireUser(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		body := decodeBody(t, rec)
		assert.Equal(t, "AUTHENTICATION_REQUIRED", body["errorCode"])
	})

	t.Run("authenticated", func(t *testing.T) {
		var called bool
		handler := mw.RequireUser(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(&domain.User{ID: uuid.New(), Role: domain.RoleEmployee}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}

func TestRequirePlatformAdmin(t *testing.T) {
	mw := NewAuthMiddleware(&mockUserService{}, testLogger(), false)

	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"tenant admin", &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin}, http.StatusForbidden},
		{"platform admin", &domain.User{ID: uuid.New(), Role: domain.RolePlatformAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := mw.RequirePlatformAdmin(okHandler(&called))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(tt.user))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestStackOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	stack := Stack(tag("outer"), tag("inner"))
	stack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
