package user

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"

	"recipe-api/internal/auth"
	"recipe-api/internal/httputil"
	"recipe-api/internal/logging"
)

// TokenIssuer issues and revokes opaque auth tokens
type TokenIssuer interface {
	IssueToken(ctx context.Context, userID uuid.UUID) (string, error)
	RevokeToken(ctx context.Context, userID uuid.UUID) error
}

// RateLimiter limits requests per IP and purpose
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for the user endpoints
type Handler struct {
	service     *Service
	tokens      TokenIssuer
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, tokens TokenIssuer, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		tokens:      tokens,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents the login response
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// UpdateProfileRequest represents the profile update request body.
// Email is read-only and password write-only.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account with email, password and name
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or duplicate email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.limitExceeded(w, r, ip, "register") {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.respondRegistrationError(w, logger, err)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, UserResponse{
		ID:    newUser.ID,
		Email: newUser.Email,
		Name:  newUser.Name,
	}, http.StatusCreated)
}

func (h *Handler) respondRegistrationError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		logger.Warn("registration failed: email already exists")
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
	case errors.Is(err, ErrEmailRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidEmailFormat):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordTooShort):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
	case errors.Is(err, ErrNameRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
	default:
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Login handles token issuance
// @Summary      Obtain an auth token
// @Description  Authenticate with email and password and receive a bearer token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/token [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.limitExceeded(w, r, ip, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	existingUser, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials", "email", req.Email)
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.IssueToken(r.Context(), existingUser.ID)
	if err != nil {
		logger.Error("failed to issue token", "error", err.Error(), "user_id", existingUser.ID)
		httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", existingUser.ID)

	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

// Logout revokes the caller's auth token
// @Summary      Log out
// @Description  Revoke the caller's auth token
// @Tags         users
// @Security     BearerAuth
// @Success      204 "No Content"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.tokens.RevokeToken(r.Context(), userID); err != nil {
		logger.Error("failed to revoke token", "error", err.Error(), "user_id", userID)
		httputil.RespondErrorWithCode(w, "failed to log out", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, nil, http.StatusNoContent)
}

// Me returns the caller's profile
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to load profile", "error", err.Error(), "user_id", userID)
		httputil.RespondErrorWithCode(w, "failed to load profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, UserResponse{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
	}, http.StatusOK)
}

// UpdateMe updates the caller's profile
// @Summary      Update own profile
// @Description  Update name and/or password. Email cannot be changed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile changes"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/users/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	partial := r.Method == http.MethodPatch

	updated, err := h.service.UpdateProfile(r.Context(), userID, ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	}, partial)
	if err != nil {
		switch {
		case errors.Is(err, ErrNameRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update profile", "error", err.Error(), "user_id", userID)
			httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("profile updated", "user_id", userID)

	httputil.RespondJSON(w, UserResponse{
		ID:    updated.ID,
		Email: updated.Email,
		Name:  updated.Name,
	}, http.StatusOK)
}

// limitExceeded applies the per-IP limit for the given purpose and
// writes the 429 response when the budget is spent.
func (h *Handler) limitExceeded(w http.ResponseWriter, r *http.Request, ip, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		// A broken limiter must not take down the auth endpoints
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request.
// RealIP middleware has already folded X-Forwarded-For into RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
