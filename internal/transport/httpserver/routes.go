package httpserver

import (
	"net/http"

	"family-recipes-go/internal/config"
	"family-recipes-go/internal/metrics"
	"family-recipes-go/internal/transport/httpserver/handler"
	authmw "family-recipes-go/internal/transport/httpserver/middleware"
	"family-recipes-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Limiters left nil disable the corresponding limit.
type Limiters struct {
	Login        authmw.Limiter
	RecipeCreate authmw.Limiter
}

func NewRouter(
	cfg config.Config,
	handlers *handler.Handlers,
	auth *authmw.Auth,
	limiters Limiters,
	registry *metrics.Registry,
	log logger.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(authmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if registry != nil {
		r.Use(registry.Instrument)
	}
	r.Use(chimw.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(authmw.NewCORS(cfg.HTTP.AllowedOrigins))

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", registry.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.With(authmw.RateLimit(limiters.Login, authmw.ClientIP, log)).Post("/auth/login", handlers.Login)
		r.Get("/recipes/public/{slug}", handlers.GetPublicRecipe)

		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)

			r.Get("/recipes/search", handlers.SearchRecipes)
			r.Get("/recipes/{id}", handlers.GetRecipe)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Required)

			r.Post("/auth/logout", handlers.Logout)
			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/families", handlers.ListFamilies)
			r.Post("/families", handlers.CreateFamily)
			r.Post("/families/join", handlers.JoinFamily)
			r.Get("/families/{id}", handlers.GetFamily)
			r.Patch("/families/{id}", handlers.UpdateFamily)
			r.Post("/families/{id}/invite", handlers.CreateInvite)
			r.Delete("/families/{id}/members/{user_id}", handlers.RemoveMember)

			r.Get("/families/{id}/recipes", handlers.ListFamilyRecipes)
			r.With(authmw.RateLimit(limiters.RecipeCreate, authmw.AuthenticatedUser, log)).
				Post("/families/{id}/recipes", handlers.CreateRecipe)

			r.Patch("/recipes/{id}", handlers.UpdateRecipe)
			r.Delete("/recipes/{id}", handlers.DeleteRecipe)

			if handlers.Photos != nil {
				r.Post("/photos/uploads", handlers.CreatePhotoUpload)
			}
		})
	})

	return r
}
