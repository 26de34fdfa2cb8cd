package recipe

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"recipe-api/internal/auth"
	"recipe-api/internal/httputil"
	"recipe-api/internal/logging"
)

// Handler contains HTTP handlers for the recipe endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RecipeRequest represents the create/update request body. User and
// Link are captured only so the handler can tell whether the client
// tried to send them.
type RecipeRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	User        json.RawMessage  `json:"user"`
	Link        json.RawMessage  `json:"link"`
}

// RecipeResponse represents a recipe in list responses
type RecipeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	User        uuid.UUID       `json:"user"`
	Link        string          `json:"link"`
}

// RecipeDetailResponse adds the description to the list shape
type RecipeDetailResponse struct {
	RecipeResponse
	Description string `json:"description"`
}

func toRecipeResponse(rec *Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price,
		User:        rec.UserID,
		Link:        rec.Link,
	}
}

func toRecipeDetailResponse(rec *Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: toRecipeResponse(rec),
		Description:    rec.Description,
	}
}

// List returns the caller's recipes
// @Summary      List own recipes
// @Description  Returns the caller's recipes, most recently created first
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} RecipeResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/recipes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	recipes, err := h.service.ListForOwner(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list recipes", "error", err.Error(), "user_id", ownerID)
		httputil.RespondErrorWithCode(w, "failed to list recipes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	response := make([]RecipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		response = append(response, toRecipeResponse(rec))
	}

	httputil.RespondJSON(w, response, http.StatusOK)
}

// Create stores a new recipe owned by the caller
// @Summary      Create a recipe
// @Description  Creates a recipe owned by the caller. Any owner or link value in the body is ignored.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecipeRequest true "Recipe fields"
// @Success      201 {object} RecipeDetailResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/recipes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid recipe create body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	// A client-supplied owner is ignored here, not rejected. Updates
	// treat it as an error instead; see Update.
	in := CreateInput{
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	rec, err := h.service.Create(r.Context(), ownerID, in)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("recipe created", "recipe_id", rec.ID, "user_id", ownerID)

	httputil.RespondJSON(w, toRecipeDetailResponse(rec), http.StatusCreated)
}

// Get returns a single owned recipe
// @Summary      Get a recipe
// @Description  Returns the recipe when it belongs to the caller; 404 otherwise
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Success      200 {object} RecipeDetailResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /api/recipes/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	recipeID, ok := parseRecipeID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), ownerID, recipeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get recipe", "error", err.Error(), "recipe_id", recipeID)
		httputil.RespondErrorWithCode(w, "failed to get recipe", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, toRecipeDetailResponse(rec), http.StatusOK)
}

// Update modifies an owned recipe. PATCH is partial, PUT is full.
// @Summary      Update a recipe
// @Description  Updates an owned recipe. Supplying an owner field fails validation.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Param        request body RecipeRequest true "Recipe changes"
// @Success      200 {object} RecipeDetailResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or owner change attempt"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /api/recipes/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	recipeID, ok := parseRecipeID(w, r)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid recipe update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	partial := r.Method == http.MethodPatch

	rec, err := h.service.Update(r.Context(), ownerID, recipeID, UpdateInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Description:   req.Description,
		OwnerSupplied: req.User != nil,
	}, partial)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("recipe updated", "recipe_id", rec.ID, "user_id", ownerID)

	httputil.RespondJSON(w, toRecipeDetailResponse(rec), http.StatusOK)
}

// Delete removes an owned recipe
// @Summary      Delete a recipe
// @Tags         recipes
// @Security     BearerAuth
// @Param        id path string true "Recipe ID"
// @Success      204 "No Content"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /api/recipes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	recipeID, ok := parseRecipeID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, recipeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete recipe", "error", err.Error(), "recipe_id", recipeID)
		httputil.RespondErrorWithCode(w, "failed to delete recipe", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", ownerID)

	httputil.RespondJSON(w, nil, http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrOwnerReadOnly):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeOwnerReadOnly, http.StatusBadRequest)
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrTimeMinutesRequired),
		errors.Is(err, ErrPriceRequired),
		errors.Is(err, ErrTimeMinutesNegative),
		errors.Is(err, ErrPriceNegative):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	default:
		logger.Error("recipe operation failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// parseRecipeID reads the id path parameter. An unparsable ID cannot
// name an existing recipe, so it reads as 404 rather than 400.
func parseRecipeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	recipeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "recipe not found", httputil.CodeNotFound, http.StatusNotFound)
		return uuid.Nil, false
	}
	return recipeID, true
}
