// Package enrollment implements the redemption side of the credential
// engine: a signed-in caller submits a raw code and, on success, their
// identity is mutated (student attachment or teacher promotion).
//
// All invite-code failure causes — bad format, unknown code, expired,
// revoked, exhausted — collapse into one user-facing message so a caller
// can never probe which codes exist.
package enrollment

import (
	"encoding/json"
	"net/http"

	invitestore "github.com/melodica-app/melodica/internal/app/store/invites"
	serialstore "github.com/melodica-app/melodica/internal/app/store/serials"
	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// User-facing messages. msgInvalidCode deliberately covers every invite
// failure cause.
const (
	msgInvalidCode   = "Invalid or expired invite code"
	msgInvalidFormat = "Invalid serial format"
	msgAlreadyUsed   = "This serial has already been used"
	msgServerError   = "Something went wrong. Please try again."
)

// Handler holds the stores and hasher used by the redemption endpoints.
type Handler struct {
	Users   *userstore.Store
	Invites *invitestore.Store
	Serials *serialstore.Store
	Hasher  *codes.Hasher
	Log     *zap.Logger
}

// NewHandler constructs an enrollment Handler over the given database.
func NewHandler(db *mongo.Database, hasher *codes.Hasher, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Invites: invitestore.New(db),
		Serials: serialstore.New(db),
		Hasher:  hasher,
		Log:     logger,
	}
}

// codeRequest is the JSON body shared by both redemption endpoints.
type codeRequest struct {
	Code string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
