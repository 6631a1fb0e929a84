package issuance

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/melodica-app/melodica/internal/app/system/authz"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/app/system/limits"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.uber.org/zap"
)

const (
	defaultExpiresInDays = 30
	maxExpiresInDays     = 365

	// Retries against a unique-index collision on the code digest. The
	// code space makes a collision vanishingly rare; one retry is plenty.
	inviteCreateAttempts = 3
)

type generateInviteRequest struct {
	ExpiresInDays *int `json:"expiresInDays"`
	MaxUses       *int `json:"maxUses"`
	Revoke        bool `json:"revoke"`
}

// ServeGenerateInvite handles POST /api/generate-invite-code. A teacher
// (or admin) mints one invite code owned by themselves, or with
// revoke=true flips every active invite they own to revoked instead.
func (h *Handler) ServeGenerateInvite(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	if !authz.CanIssueInvites(r) {
		writeError(w, http.StatusForbidden, msgForbidden)
		return
	}

	var req generateInviteRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.Revoke {
		h.revokeAllInvites(ctx, w, callerID)
		return
	}

	expiresInDays := defaultExpiresInDays
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays < 1 || *req.ExpiresInDays > maxExpiresInDays {
			writeError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		expiresInDays = *req.ExpiresInDays
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	expiresAt := time.Now().Add(time.Duration(expiresInDays) * 24 * time.Hour)

	var raw string
	var err error
	for attempt := 0; attempt < inviteCreateAttempts; attempt++ {
		raw = codes.NewInviteCode()
		_, err = h.Invites.Create(ctx, models.InviteCode{
			CodeHash:  h.Hasher.Hash(raw),
			TeacherID: callerID,
			Status:    models.InviteActive,
			ExpiresAt: &expiresAt,
			MaxUses:   req.MaxUses,
		})
		if err == nil || !wafflemongo.IsDup(err) {
			break
		}
	}
	if err != nil {
		h.Log.Error("failed to create invite code",
			zap.String("teacher_id", callerID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Log.Info("invite code issued",
		zap.String("teacher_id", callerID.Hex()),
		zap.Time("expires_at", expiresAt))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"code":      raw,
		"expiresAt": expiresAt,
		"maxUses":   req.MaxUses,
	})
}
