package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-api/internal/auth"
	"recipe-api/internal/logging"
)

type mockTokenIssuer struct {
	issueFn     func(ctx context.Context, userID uuid.UUID) (string, error)
	revokeCalls int
}

func (m *mockTokenIssuer) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, userID)
	}
	return "issued-token", nil
}

func (m *mockTokenIssuer) RevokeToken(context.Context, uuid.UUID) error {
	m.revokeCalls++
	return nil
}

type mockRateLimiter struct {
	exceeded bool
	records  int
}

func (m *mockRateLimiter) CheckIPRateLimitWithPurpose(context.Context, string, string) (bool, error) {
	return m.exceeded, nil
}

func (m *mockRateLimiter) RecordIPRequestWithPurpose(context.Context, string, string) error {
	m.records++
	return nil
}

func newTestHandler(repo Repository, issuer *mockTokenIssuer, limiter *mockRateLimiter) *Handler {
	if issuer == nil {
		issuer = &mockTokenIssuer{}
	}
	if limiter == nil {
		limiter = &mockRateLimiter{}
	}
	return NewHandler(NewService(repo), issuer, limiter, logging.NewLogger(true))
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		repo := &mockRepository{
			createFn: func(_ context.Context, email, name, passwordHash string, _, _ bool) (*User, error) {
				return &User{ID: uuid.New(), Email: email, Name: name, PasswordHash: passwordHash}, nil
			},
		}
		handler := newTestHandler(repo, nil, nil)

		rec := postJSON(t, handler.Register, "/api/users", RegisterRequest{
			Email:    "test@example.com",
			Password: "Password123",
			Name:     "Test",
		})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "test@example.com", resp.Email)
		assert.Equal(t, "Test", resp.Name)

		// Neither the plaintext password nor any hash may leak
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "Password123")
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &mockRepository{
			createFn: func(context.Context, string, string, string, bool, bool) (*User, error) {
				return nil, ErrDuplicateEmail
			},
		}
		handler := newTestHandler(repo, nil, nil)

		rec := postJSON(t, handler.Register, "/api/users", RegisterRequest{
			Email:    "test@example.com",
			Password: "Password123",
			Name:     "Test",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email_already_exists")
	})

	t.Run("short password", func(t *testing.T) {
		repo := &mockRepository{
			createFn: func(context.Context, string, string, string, bool, bool) (*User, error) {
				t.Fatal("no user may be persisted")
				return nil, nil
			},
		}
		handler := newTestHandler(repo, nil, nil)

		rec := postJSON(t, handler.Register, "/api/users", RegisterRequest{
			Email:    "test@example.com",
			Password: "pw12",
			Name:     "Test",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password_too_short")
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := newTestHandler(&mockRepository{}, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request_body")
	})

	t.Run("rate limited", func(t *testing.T) {
		limiter := &mockRateLimiter{exceeded: true}
		handler := newTestHandler(&mockRepository{}, nil, limiter)

		rec := postJSON(t, handler.Register, "/api/users", RegisterRequest{})

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Zero(t, limiter.records)
	})
}

func TestLoginHandler(t *testing.T) {
	service := NewService(&mockRepository{})
	hash, err := service.hashPassword("Password123")
	require.NoError(t, err)

	userID := uuid.New()
	repo := &mockRepository{
		getByEmailFn: func(_ context.Context, email string) (*User, error) {
			if email == "test@example.com" {
				return &User{ID: userID, Email: email, PasswordHash: hash}, nil
			}
			return nil, ErrNotFound
		},
	}

	t.Run("returns the issued token", func(t *testing.T) {
		issuer := &mockTokenIssuer{
			issueFn: func(_ context.Context, id uuid.UUID) (string, error) {
				assert.Equal(t, userID, id)
				return "opaque-token-value", nil
			},
		}
		handler := newTestHandler(repo, issuer, nil)

		rec := postJSON(t, handler.Login, "/api/users/token", LoginRequest{
			Email:    "test@example.com",
			Password: "Password123",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "opaque-token-value", resp.Token)
	})

	t.Run("wrong password yields no token", func(t *testing.T) {
		handler := newTestHandler(repo, nil, nil)

		rec := postJSON(t, handler.Login, "/api/users/token", LoginRequest{
			Email:    "test@example.com",
			Password: "wrongpass",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "token\":")
		assert.Contains(t, rec.Body.String(), "invalid_credentials")
	})

	t.Run("unknown email yields no token", func(t *testing.T) {
		handler := newTestHandler(repo, nil, nil)

		rec := postJSON(t, handler.Login, "/api/users/token", LoginRequest{
			Email:    "nobody@example.com",
			Password: "Password123",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func authedRequest(method, target string, body *bytes.Reader, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestMeHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("returns own profile", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*User, error) {
				assert.Equal(t, userID, id)
				return &User{ID: id, Email: "test@example.com", Name: "Test"}, nil
			},
		}
		handler := newTestHandler(repo, nil, nil)

		rec := httptest.NewRecorder()
		handler.Me(rec, authedRequest(http.MethodGet, "/api/users/me", nil, userID))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "test@example.com", resp.Email)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		handler := newTestHandler(&mockRepository{}, nil, nil)

		rec := httptest.NewRecorder()
		handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateMeHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("patch changes only the name", func(t *testing.T) {
		repo := &mockRepository{
			updateProfileFn: func(_ context.Context, id uuid.UUID, changes ProfileChanges) (*User, error) {
				require.NotNil(t, changes.Name)
				assert.Nil(t, changes.PasswordHash)
				return &User{ID: id, Email: "test@example.com", Name: *changes.Name}, nil
			},
		}
		handler := newTestHandler(repo, nil, nil)

		payload, err := json.Marshal(map[string]string{"name": "Renamed"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.UpdateMe(rec, authedRequest(http.MethodPatch, "/api/users/me", bytes.NewReader(payload), userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Renamed")
	})

	t.Run("put without name fails", func(t *testing.T) {
		handler := newTestHandler(&mockRepository{}, nil, nil)

		payload, err := json.Marshal(map[string]string{"password": "NewPassword123"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.UpdateMe(rec, authedRequest(http.MethodPut, "/api/users/me", bytes.NewReader(payload), userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name_required")
	})
}

func TestLogoutHandler(t *testing.T) {
	issuer := &mockTokenIssuer{}
	handler := newTestHandler(&mockRepository{}, issuer, nil)

	rec := httptest.NewRecorder()
	handler.Logout(rec, authedRequest(http.MethodPost, "/api/users/logout", nil, uuid.New()))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, issuer.revokeCalls)
}
