// internal/app/features/issuance/routes.go
package issuance

import "github.com/go-chi/chi/v5"

// MountRoutes registers the issuance endpoints on the supplied router,
// typically the /api subrouter with session middleware already applied.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/generate-invite-code", h.ServeGenerateInvite)
	r.Post("/generate-teacher-serials", h.ServeGenerateSerials)
}
