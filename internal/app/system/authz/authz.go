// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/melodica-app/melodica/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's platform role, name, Mongo ObjectID, and a
// found flag. If no user is present or the stored ID is malformed, it
// returns "visitor", "", NilObjectID, false — ok=true always means a
// valid authenticated user with a parseable ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return user.Role, user.Name, userID, true
}

// IsAdmin reports whether the caller holds the admin platform role.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsTeacher reports whether the caller carries the teacher application
// role flag. Admins are not implicitly teachers.
func IsTeacher(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsTeacher
}

// IsStudent reports whether the caller's agent role is student.
func IsStudent(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.AgentRole == "student"
}

// CanIssueInvites reports whether the caller may create or revoke invite
// codes: teachers and admins.
func CanIssueInvites(r *http.Request) bool {
	return IsTeacher(r) || IsAdmin(r)
}

// CanIssueSerials reports whether the caller may mint activation serials:
// admins only.
func CanIssueSerials(r *http.Request) bool {
	return IsAdmin(r)
}
