// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/app/system/authz"
	"github.com/melodica-app/melodica/internal/app/system/limits"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxBioLength = 2000

// profileResponse is the JSON shape of the caller's own profile.
type profileResponse struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Bio               string `json:"bio"`
	Role              string `json:"role"`
	IsTeacher         bool   `json:"isTeacher"`
	AgentRole         string `json:"agentRole"`
	AssignedTeacherID string `json:"assignedTeacherId,omitempty"`
}

// ServeProfile handles GET /api/profile, returning the caller's own record.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	resp := profileResponse{
		FullName:  user.FullName,
		Email:     user.Email,
		Bio:       user.Bio,
		Role:      user.Role,
		IsTeacher: user.IsTeacher,
		AgentRole: user.AgentRole,
	}
	if user.AssignedTeacherID != nil {
		resp.AssignedTeacherID = user.AssignedTeacherID.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}

// updateProfileRequest is the JSON body for profile updates.
type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
}

// HandleUpdateProfile handles PUT /api/profile. The store sanitizes both
// fields before persisting, so markup submitted in a bio never reaches
// another user's browser intact.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in")
		return
	}

	var req updateProfileRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxProfileUpdateSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if len(req.Bio) > maxBioLength {
		writeError(w, http.StatusBadRequest, "Bio is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := userstore.New(h.DB).UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		FullName: req.FullName,
		Bio:      req.Bio,
	})
	if err != nil {
		h.Log.Error("failed to update profile", zap.String("user_id", uid.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
