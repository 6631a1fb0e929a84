package testutil

import (
	"net/http"

	"github.com/melodica-app/melodica/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents caller data for testing HTTP handlers.
type TestUser struct {
	ID                string
	Name              string
	Email             string
	Role              string
	IsTeacher         bool
	AgentRole         string
	AssignedTeacherID string
}

// AdminUser returns a TestUser with the admin platform role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// TeacherUser returns a TestUser carrying the teacher application role.
func TeacherUser() TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Teacher",
		Email:     "teacher@test.com",
		Role:      "member",
		IsTeacher: true,
		AgentRole: "teacher",
	}
}

// StudentUser returns a TestUser attached to the given teacher.
func StudentUser(teacherID primitive.ObjectID) TestUser {
	return TestUser{
		ID:                primitive.NewObjectID().Hex(),
		Name:              "Test Student",
		Email:             "student@test.com",
		Role:              "member",
		AgentRole:         "student",
		AssignedTeacherID: teacherID.Hex(),
	}
}

// VisitorUser returns a TestUser with no application roles yet.
func VisitorUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Visitor",
		Email: "visitor@test.com",
		Role:  "member",
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers, bypassing the session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		IsTeacher:         user.IsTeacher,
		AgentRole:         user.AgentRole,
		AssignedTeacherID: user.AssignedTeacherID,
	}
	return auth.WithTestUser(r, sessionUser)
}
