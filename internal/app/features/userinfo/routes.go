// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers the userinfo endpoint on the supplied router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/user", h.ServeUserInfo)
}
