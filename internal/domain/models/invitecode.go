// internal/domain/models/invitecode.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite code lifecycle states. "Exhausted" (UseCount reaching MaxUses) is
// computed at redemption time and never stored.
const (
	InviteActive  = "active"
	InviteExpired = "expired"
	InviteRevoked = "revoked"
)

// InviteCode is a teacher-issued code that attaches a redeeming user to
// that teacher as a student. Only the digest of the code is stored; the
// raw code is shown to the issuing teacher once and never again.
type InviteCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CodeHash  string             `bson:"code_hash" json:"-"`
	TeacherID primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`
	Status    string             `bson:"status" json:"status"`

	// ExpiresAt is optional; expiry is checked lazily at redemption time,
	// there is no background sweep.
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	// MaxUses caps redemptions when set. UseCount never exceeds it.
	MaxUses  *int `bson:"max_uses,omitempty" json:"max_uses,omitempty"`
	UseCount int  `bson:"use_count" json:"use_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
