// internal/app/features/enrollment/redeeminvite.go
package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	invitestore "github.com/melodica-app/melodica/internal/app/store/invites"
	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/app/system/authz"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/app/system/limits"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.uber.org/zap"
)

// ServeRedeemInvite handles POST /api/redeem-invite-code.
//
// Body: { "code": "STU-XXXXXX" }
//
// On success: 200 and { "success": true, "teacherName": "..." }.
// The caller becomes a student of the code's owning teacher. A code that
// is malformed, unknown, expired, revoked, or exhausted always yields the
// same 400 response.
func (h *Handler) ServeRedeemInvite(w http.ResponseWriter, r *http.Request) {
	_, _, requesterID, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	// Teachers enroll students; they do not become them.
	if authz.IsTeacher(r) {
		writeError(w, http.StatusForbidden, "Teachers cannot redeem student invite codes")
		return
	}

	var req codeRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	// Format check happens before any store access.
	code := codes.Normalize(req.Code)
	if !codes.ValidInviteFormat(code) {
		writeError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invites.GetByHash(ctx, h.Hasher.Hash(code))
	if err != nil {
		if errors.Is(err, invitestore.ErrNotFound) {
			writeError(w, http.StatusBadRequest, msgInvalidCode)
			return
		}
		h.Log.Error("redeem-invite: lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if inv.Status != models.InviteActive {
		writeError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	// Lazy expiry: flip the record on the way out so the state is
	// observable, then report the usual failure.
	now := time.Now()
	if inv.ExpiresAt != nil && inv.ExpiresAt.Before(now) {
		if err := h.Invites.MarkExpired(ctx, inv.ID, now); err != nil {
			h.Log.Error("redeem-invite: mark expired failed",
				zap.String("invite_id", inv.ID.Hex()), zap.Error(err))
		}
		writeError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	if inv.MaxUses != nil && inv.UseCount >= *inv.MaxUses {
		writeError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	teacher, err := h.Users.GetByID(ctx, inv.TeacherID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			// Owning teacher is gone; the code is dead.
			writeError(w, http.StatusBadRequest, msgInvalidCode)
			return
		}
		h.Log.Error("redeem-invite: teacher lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// Single conditional update: increments only while still under the
	// cap. Losing the race to a concurrent redemption fails like any
	// other invalid code.
	if _, err := h.Invites.ConsumeUse(ctx, inv.ID); err != nil {
		if errors.Is(err, invitestore.ErrNotConsumable) {
			writeError(w, http.StatusBadRequest, msgInvalidCode)
			return
		}
		h.Log.Error("redeem-invite: consume failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if err := h.Users.AssignTeacher(ctx, requesterID, teacher.ID); err != nil {
		// The use was consumed but the student attachment failed; surface
		// a server error so the caller retries with a fresh code.
		h.Log.Error("redeem-invite: assign teacher failed",
			zap.String("user_id", requesterID.Hex()),
			zap.String("teacher_id", teacher.ID.Hex()),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Log.Info("invite code redeemed",
		zap.String("user_id", requesterID.Hex()),
		zap.String("teacher_id", teacher.ID.Hex()),
		zap.String("invite_id", inv.ID.Hex()))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"teacherName": teacher.FullName,
	})
}
