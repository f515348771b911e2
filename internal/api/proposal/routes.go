package proposal

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers proposal and store routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/proposals", func(r chi.Router) {
		r.Post("/", h.Generate)

		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", h.Status)
			r.Post("/approval", h.Decide)
			r.Get("/artifact", h.Download)
		})
	})

	r.Route("/stores", func(r chi.Router) {
		r.Get("/", h.ListStores)
		r.Post("/reindex", h.Reindex)
	})
}
