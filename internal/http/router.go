package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"recipe-api/internal/auth"
	"recipe-api/internal/config"
	"recipe-api/internal/httputil"
	"recipe-api/internal/logging"
	"recipe-api/internal/metrics"
	"recipe-api/internal/recipe"
	"recipe-api/internal/user"
)

// NewRouter creates and configures the HTTP router. The route table is
// built once at startup and not mutated afterwards.
func NewRouter(
	cfg *config.Config,
	userHandler *user.Handler,
	recipeHandler *recipe.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondErrorWithCode(w, "not found", httputil.CodeNotFound, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondErrorWithCode(w, "method not allowed", httputil.CodeMethodNotAllowed, http.StatusMethodNotAllowed)
	})

	// Public routes
	r.Get("/health", handleHealth)
	r.Handle("/metrics", metrics.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.Post("/token", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/logout", userHandler.Logout)
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateMe)
			r.Patch("/me", userHandler.UpdateMe)
		})
	})

	r.Route("/api/recipes", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", recipeHandler.List)
		r.Post("/", recipeHandler.Create)
		r.Get("/{id}", recipeHandler.Get)
		r.Put("/{id}", recipeHandler.Update)
		r.Patch("/{id}", recipeHandler.Update)
		r.Delete("/{id}", recipeHandler.Delete)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
