package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/melodica-app/melodica/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given name, email, and platform role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateTeacher inserts a member carrying the teacher application role.
func (f *Fixtures) CreateTeacher(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		Role:       "member",
		IsTeacher:  true,
		AgentRole:  "teacher",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test teacher: %v", err)
	}
	return u
}

// CreateInvite inserts an active invite code owned by the teacher, hashed
// with codeHash. maxUses may be nil for unlimited; expiresAt may be nil.
func (f *Fixtures) CreateInvite(ctx context.Context, teacherID primitive.ObjectID, codeHash string, maxUses *int, expiresAt *time.Time) models.InviteCode {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.InviteCode{
		ID:        primitive.NewObjectID(),
		CodeHash:  codeHash,
		TeacherID: teacherID,
		Status:    models.InviteActive,
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
		UseCount:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("invite_codes").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invite: %v", err)
	}
	return inv
}

// CreateSerial inserts an unused activation serial hashed with codeHash.
func (f *Fixtures) CreateSerial(ctx context.Context, issuedBy primitive.ObjectID, codeHash string) models.ActivationSerial {
	f.t.Helper()

	serial := models.ActivationSerial{
		ID:        primitive.NewObjectID(),
		CodeHash:  codeHash,
		Status:    models.SerialUnused,
		BatchID:   "test-batch",
		IssuedBy:  issuedBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("activation_serials").InsertOne(ctx, serial); err != nil {
		f.t.Fatalf("failed to create test serial: %v", err)
	}
	return serial
}
