// Package issuance implements the minting side of the credential engine:
// teachers generate student invite codes (or revoke their outstanding
// ones), and admins mint batches of teacher activation serials.
//
// Raw codes exist only in the issuance response; every persisted record
// carries the digest alone, so a code can never be recovered after the
// response is gone.
package issuance

import (
	"encoding/json"
	"net/http"

	invitestore "github.com/melodica-app/melodica/internal/app/store/invites"
	serialstore "github.com/melodica-app/melodica/internal/app/store/serials"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgForbidden      = "You do not have permission to perform this action"
	msgInvalidRequest = "Invalid request"
	msgServerError    = "Something went wrong. Please try again."
)

// Handler holds the stores and hasher used by the issuance endpoints.
type Handler struct {
	Invites *invitestore.Store
	Serials *serialstore.Store
	Hasher  *codes.Hasher
	Log     *zap.Logger
}

// NewHandler constructs an issuance Handler over the given database.
func NewHandler(db *mongo.Database, hasher *codes.Hasher, logger *zap.Logger) *Handler {
	return &Handler{
		Invites: invitestore.New(db),
		Serials: serialstore.New(db),
		Hasher:  hasher,
		Log:     logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
