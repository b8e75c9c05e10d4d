package httpserver

import (
	"net/http"
	"time"

	"family-directory-go/internal/config"
	authdomain "family-directory-go/internal/domain/auth"
	"family-directory-go/internal/transport/httpserver/handler"
	"family-directory-go/internal/transport/httpserver/middleware"
	"family-directory-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authdomain.Service, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	sessions := middleware.NewSessionAuth(auth, cfg.Session.CookieName, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)
		r.Post("/auth/logout", handlers.Logout)

		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)

			r.Get("/user", handlers.CurrentUser)
			r.Put("/user/profile", handlers.UpdateProfile)

			r.Get("/people", handlers.ListPeople)
			r.Post("/people", handlers.CreatePerson)
			r.Get("/people/{id}", handlers.GetPerson)
			r.Put("/people/{id}", handlers.UpdatePerson)
			r.Delete("/people/{id}", handlers.DeletePerson)

			r.Post("/relationships", handlers.CreateRelationship)
			r.Delete("/relationships/{id}", handlers.DeleteRelationship)

			r.Post("/media", handlers.CreateMedia)
			r.Post("/media/upload-url", handlers.MediaUploadURL)
			r.Delete("/media/{id}", handlers.DeleteMedia)

			r.Get("/messages/inbox", handlers.Inbox)
			r.Post("/messages/thread", handlers.CreateThread)
			r.Post("/messages/{threadId}", handlers.PostMessage)
			r.Get("/messages/thread/{threadId}", handlers.ListMessages)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/admin/invites", handlers.ListInvites)
				r.Post("/admin/invites", handlers.CreateInvite)
			})
		})
	})

	return r
}
