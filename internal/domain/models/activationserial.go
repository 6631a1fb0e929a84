// internal/domain/models/activationserial.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activation serial lifecycle states.
const (
	SerialUnused  = "unused"
	SerialUsed    = "used"
	SerialRevoked = "revoked"
)

// ActivationSerial is an admin-issued, single-use code that promotes a
// redeeming user to the teacher application role.
//
// Invariant: Status == "used" exactly when UsedBy is set.
type ActivationSerial struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CodeHash string             `bson:"code_hash" json:"-"`
	Status   string             `bson:"status" json:"status"`

	// BatchID groups serials minted in the same admin request.
	BatchID  string             `bson:"batch_id" json:"batch_id"`
	IssuedBy primitive.ObjectID `bson:"issued_by" json:"issued_by"`

	UsedBy *primitive.ObjectID `bson:"used_by,omitempty" json:"used_by,omitempty"`
	UsedAt *time.Time          `bson:"used_at,omitempty" json:"used_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
