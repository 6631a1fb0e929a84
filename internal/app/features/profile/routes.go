// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// MountRoutes registers the profile endpoints on the supplied router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/profile", h.ServeProfile)
	r.Put("/profile", h.HandleUpdateProfile)
}
