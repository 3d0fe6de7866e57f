package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/rest/middleware"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const apiPrefix = "/api/v1"

type RouterDeps struct {
	HTTP       config.HTTPConfig
	JWTSecret  string
	Properties *PropertyHandler
	Users      *UserHandler
	Metrics    *metrics.MetricsManager
	Logger     *logger.Logger
}

// NewRouter builds the public HTTP API. Listing writes require an admin token
// and favorites changes require the owner's token, but only when a JWT secret
// is configured.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.RequestLogger(deps.Logger, deps.Metrics), chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.HTTP.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route(apiPrefix, func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			p := deps.Properties
			r.Get("/", p.Search)
			r.Get("/featured", p.Featured)
			r.Get("/locations", p.Locations)
			r.Get("/{id}", p.GetByID)

			r.Group(func(r chi.Router) {
				if deps.JWTSecret != "" {
					r.Use(middleware.JWTAuth(deps.JWTSecret, deps.Logger), middleware.RequireRole(middleware.RoleAdmin))
				}
				r.Use(chimw.RequestSize(deps.HTTP.MaxUploadMB << 20))

				r.Post("/", p.Create)
				r.Post("/media-cleanup", p.RetryMediaCleanup)
				r.Patch("/{id}", p.Update)
				r.Delete("/{id}", p.Delete)
				r.Post("/{id}/images", p.AddImages)
				r.Delete("/{id}/images", p.RemoveImage)
			})
		})

		r.Route("/users", func(r chi.Router) {
			u := deps.Users
			r.Post("/", u.Create)
			r.Post("/find-or-create", u.FindOrCreate)
			r.Get("/{id}", u.GetByID)
			r.Get("/{id}/favorites", u.GetFavorites)

			r.Group(func(r chi.Router) {
				if deps.JWTSecret != "" {
					r.Use(middleware.JWTAuth(deps.JWTSecret, deps.Logger), middleware.RequireOwnerOrRole("id", middleware.RoleAdmin))
				}
				r.Post("/{id}/favorites/{propertyId}", u.AddFavorite)
				r.Delete("/{id}/favorites/{propertyId}", u.RemoveFavorite)
			})
		})
	})
	return r
}
