package server

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers page and page builder routes.
func SetupRoutes(r chi.Router, h *Handlers) {
	r.Get("/", h.Home)

	r.Get("/pages", h.ListPages)
	r.Get("/pages/{id}", h.ViewPage)

	r.Route("/pagebuilder", func(r chi.Router) {
		r.Get("/events", h.Events)
		r.Get("/{action}", h.PageBuilder)
		r.Post("/{action}", h.PageBuilder)
	})
}
