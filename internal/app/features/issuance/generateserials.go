package issuance

import (
	"context"
	"encoding/json"
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"github.com/melodica-app/melodica/internal/app/system/authz"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/app/system/limits"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.uber.org/zap"
)

const (
	maxSerialBatch = 50

	serialBatchAttempts = 3
)

type generateSerialsRequest struct {
	Count int `json:"count"`
}

// ServeGenerateSerials handles POST /api/generate-teacher-serials. An
// admin mints a batch of activation serials; the raw codes appear in
// this response and nowhere else.
func (h *Handler) ServeGenerateSerials(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	if !authz.CanIssueSerials(r) {
		writeError(w, http.StatusForbidden, msgForbidden)
		return
	}

	var req generateSerialsRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if req.Count < 1 || req.Count > maxSerialBatch {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	batchID := uuid.NewString()

	// A digest collision trips the unique index and fails the whole
	// InsertMany; the batch is regenerated from scratch. With a 32-char
	// alphabet over 12 positions this effectively never happens.
	var raws []string
	var err error
	for attempt := 0; attempt < serialBatchAttempts; attempt++ {
		raws = make([]string, req.Count)
		serials := make([]models.ActivationSerial, req.Count)
		for i := range serials {
			raws[i] = codes.NewActivationSerial()
			serials[i] = models.ActivationSerial{
				CodeHash: h.Hasher.Hash(raws[i]),
				Status:   models.SerialUnused,
				BatchID:  batchID,
				IssuedBy: callerID,
			}
		}
		err = h.Serials.CreateBatch(ctx, serials)
		if err == nil || !wafflemongo.IsDup(err) {
			break
		}
		// An ordered insert stops at the duplicate but keeps what came
		// before it; drop the partial batch before trying again.
		if cleanupErr := h.Serials.DeleteBatch(ctx, batchID); cleanupErr != nil {
			h.Log.Warn("failed to clean up partial serial batch",
				zap.String("batch_id", batchID), zap.Error(cleanupErr))
		}
	}
	if err != nil {
		h.Log.Error("failed to create serial batch",
			zap.String("admin_id", callerID.Hex()),
			zap.String("batch_id", batchID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.Log.Info("teacher serials issued",
		zap.String("admin_id", callerID.Hex()),
		zap.String("batch_id", batchID),
		zap.Int("count", req.Count))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"serials": raws,
		"count":   req.Count,
	})
}
