package issuance

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// revokeAllInvites flips every active invite owned by the caller to
// revoked, one conditional update per record. There is no cross-record
// atomicity: a failure mid-loop leaves a partially revoked set, which is
// safe because each update is idempotent and re-invoking revoke finishes
// the job.
func (h *Handler) revokeAllInvites(ctx context.Context, w http.ResponseWriter, callerID primitive.ObjectID) {
	ids, err := h.Invites.ListActiveIDs(ctx, callerID)
	if err != nil {
		h.Log.Error("failed to list active invites for revocation",
			zap.String("teacher_id", callerID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	revoked := 0
	for _, id := range ids {
		done, err := h.Invites.Revoke(ctx, id)
		if err != nil {
			h.Log.Warn("failed to revoke invite, continuing",
				zap.String("invite_id", id.Hex()), zap.Error(err))
			continue
		}
		if done {
			revoked++
		}
	}

	h.Log.Info("invite codes revoked",
		zap.String("teacher_id", callerID.Hex()),
		zap.Int("revoked", revoked),
		zap.Int("listed", len(ids)))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Revoked %d invite code(s)", revoked),
	})
}
