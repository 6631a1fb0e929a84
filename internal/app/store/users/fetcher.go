package userstore

import (
	"context"

	"github.com/melodica-app/melodica/internal/app/system/auth"
	"github.com/melodica-app/melodica/internal/app/system/normalize"
	"github.com/melodica-app/melodica/internal/app/system/timeouts"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher, loading fresh user data on each
// request so role promotions from a redemption are visible immediately.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID and returns nil if the user is not
// found, disabled, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":                 1,
		"full_name":           1,
		"email":               1,
		"role":                1,
		"status":              1,
		"is_teacher":          1,
		"agent_role":          1,
		"assigned_teacher_id": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	if normalize.Status(u.Status) == "disabled" {
		return nil
	}

	su := &auth.SessionUser{
		ID:        u.ID.Hex(),
		Name:      u.FullName,
		Email:     u.Email,
		Role:      normalize.Role(u.Role),
		IsTeacher: u.IsTeacher,
		AgentRole: u.AgentRole,
	}
	if u.AssignedTeacherID != nil {
		su.AssignedTeacherID = u.AssignedTeacherID.Hex()
	}
	return su
}
