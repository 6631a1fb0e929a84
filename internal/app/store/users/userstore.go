package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/melodica-app/melodica/internal/app/system/htmlsanitize"
	"github.com/melodica-app/melodica/internal/app/system/normalize"
	"github.com/melodica-app/melodica/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with
	// an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches the given ID.
	ErrNotFound = errors.New("user not found")

	errBadRole = errors.New(`role must be "admin"|"member"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(htmlsanitize.StripTags(u.FullName))
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = "active"
	}

	switch normalize.Role(u.Role) {
	case "admin", "member":
		u.Role = normalize.Role(u.Role)
	default:
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// AssignTeacher attaches a student to a teacher: sets assigned_teacher_id
// and flips agent_role to "student". This is the identity side effect of a
// successful invite redemption.
func (s *Store) AssignTeacher(ctx context.Context, userID, teacherID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"assigned_teacher_id": teacherID,
			"agent_role":          "student",
			"updated_at":          time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PromoteToTeacher grants the teacher application role: sets is_teacher
// and flips agent_role to "teacher". This is the identity side effect of a
// successful serial redemption. The update is idempotent.
func (s *Store) PromoteToTeacher(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"is_teacher": true,
			"agent_role": "teacher",
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate holds the self-service profile fields a user may edit.
type ProfileUpdate struct {
	FullName string
	Bio      string
}

// UpdateProfile updates a user's display name and bio. The name is
// stripped of markup; the bio keeps limited rich text.
func (s *Store) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(htmlsanitize.StripTags(upd.FullName))
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"full_name":    name,
			"full_name_ci": text.Fold(name),
			"bio":          htmlsanitize.Sanitize(upd.Bio),
			"updated_at":   time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
