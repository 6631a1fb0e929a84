// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents every account on the platform: admins, teachers,
// students, and visitors who have not yet redeemed anything.
//
// NOTE:
//   - Role is the platform role ("admin" | "member") and is never written
//     by the credential engine.
//   - IsTeacher and AgentRole are application-level flags set exclusively
//     through credential redemption.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"`             // admin | member
	IsTeacher  bool               `bson:"is_teacher" json:"is_teacher"` // teacher application role
	AgentRole  string             `bson:"agent_role,omitempty" json:"agent_role,omitempty"` // student | teacher

	// AssignedTeacherID links a student to the teacher whose invite code
	// they redeemed.
	AssignedTeacherID *primitive.ObjectID `bson:"assigned_teacher_id,omitempty" json:"assigned_teacher_id,omitempty"`

	Bio    string `bson:"bio,omitempty" json:"bio,omitempty"` // sanitized HTML
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
