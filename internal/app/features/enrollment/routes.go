// internal/app/features/enrollment/routes.go
package enrollment

import "github.com/go-chi/chi/v5"

// MountRoutes registers the redemption endpoints on the supplied router,
// typically the /api subrouter with session middleware already applied.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/redeem-invite-code", h.ServeRedeemInvite)
	r.Post("/redeem-teacher-serial", h.ServeRedeemSerial)
}
