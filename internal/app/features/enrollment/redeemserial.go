// internal/app/features/enrollment/redeemserial.go
package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	serialstore "github.com/melodica-app/melodica/internal/app/store/serials"
	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/app/system/authz"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/app/system/limits"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.uber.org/zap"
)

// ServeRedeemSerial handles POST /api/redeem-teacher-serial.
//
// Body: { "code": "TCH-XXXX-XXXX-XXXX" }
//
// On success: 200 and { "success": true, "message": "..." }, with
// "alreadyTeacher": true when the caller held the role before the call.
// Redemption is idempotent for the identity that claimed the serial;
// a serial claimed by anyone else fails with 400.
func (h *Handler) ServeRedeemSerial(w http.ResponseWriter, r *http.Request) {
	_, _, requesterID, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	requester, err := h.Users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		h.Log.Error("redeem-serial: requester lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// Already a teacher: succeed without touching any serial.
	if requester.IsTeacher {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"alreadyTeacher": true,
			"message":        "You already have a teacher account",
		})
		return
	}

	var req codeRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	// Format check happens before any store access.
	code := codes.Normalize(req.Code)
	if !codes.ValidSerialFormat(code) {
		writeError(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	serial, err := h.Serials.GetByHash(ctx, h.Hasher.Hash(code))
	if err != nil {
		if errors.Is(err, serialstore.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid serial code")
			return
		}
		h.Log.Error("redeem-serial: lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// The caller already claimed this serial: re-apply the promotion so a
	// lost role write heals, and report success without touching the record.
	if serial.Status == models.SerialUsed && serial.UsedBy != nil && *serial.UsedBy == requesterID {
		if err := h.Users.PromoteToTeacher(ctx, requesterID); err != nil {
			h.Log.Error("redeem-serial: re-promotion failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Teacher account activated",
		})
		return
	}

	// Used by someone else, or revoked.
	if serial.Status != models.SerialUnused {
		writeError(w, http.StatusBadRequest, msgAlreadyUsed)
		return
	}

	if err := h.Users.PromoteToTeacher(ctx, requesterID); err != nil {
		h.Log.Error("redeem-serial: promotion failed",
			zap.String("user_id", requesterID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// Claim the serial with a single conditional update guarded by
	// "still unused". Losing the race (or any bookkeeping failure) does
	// not roll back the promotion: the user keeps the role and the
	// outcome stays success.
	if err := h.Serials.Claim(ctx, serial.ID, requesterID, time.Now()); err != nil {
		if errors.Is(err, serialstore.ErrAlreadyClaimed) {
			h.Log.Warn("redeem-serial: lost claim race after promotion",
				zap.String("user_id", requesterID.Hex()),
				zap.String("serial_id", serial.ID.Hex()))
		} else {
			h.Log.Error("redeem-serial: claim bookkeeping failed",
				zap.String("user_id", requesterID.Hex()),
				zap.String("serial_id", serial.ID.Hex()),
				zap.Error(err))
		}
	}

	h.Log.Info("teacher serial redeemed",
		zap.String("user_id", requesterID.Hex()),
		zap.String("serial_id", serial.ID.Hex()))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Teacher account activated",
	})
}
