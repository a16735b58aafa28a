package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.loadUser)

		r.Get("/", s.handleHome)
		r.Post("/", s.handleLogin)
		r.Get("/register/", s.handleRegister)
		r.Post("/register/", s.handleRegister)
		r.Get("/about/", s.handleAbout)
		r.Get("/apartments/", s.handleApartments)

		r.Group(func(r chi.Router) {
			r.Use(s.requireLogin)
			r.Get("/logout/", s.handleLogout)
			r.Get("/users/", s.handleMembers)
		})
	})

	r.NotFound(s.handleNotFound)

	return r
}
