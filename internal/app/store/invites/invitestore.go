// Package invitestore persists teacher-issued invite codes.
//
// The usage-cap race is closed here by construction: ConsumeUse is a
// single conditional update that increments use_count only while the
// record is still active and under its cap. Two concurrent redemptions of
// a maxUses=1 code can never both succeed.
package invitestore

import (
	"context"
	"errors"
	"time"

	"github.com/melodica-app/melodica/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no invite matches the given digest or ID.
	ErrNotFound = errors.New("invite code not found")
	// ErrNotConsumable is returned when the conditional use-count update
	// matched nothing: the code was concurrently exhausted, expired, or
	// revoked between the caller's read and the update.
	ErrNotConsumable = errors.New("invite code is no longer consumable")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invite_codes")}
}

// EnsureIndexes creates the unique digest index so lookup is an indexed
// exact match, plus the issuer listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code_hash", Value: 1}},
			Options: options.Index().SetName("idx_invites_code_hash").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_invites_teacher_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new invite code record. The caller supplies the digest;
// raw codes never reach this package.
func (s *Store) Create(ctx context.Context, inv models.InviteCode) (models.InviteCode, error) {
	inv.ID = primitive.NewObjectID()
	if inv.Status == "" {
		inv.Status = models.InviteActive
	}
	inv.UseCount = 0
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.InviteCode{}, err
	}
	return inv, nil
}

// GetByHash looks up an invite by exact digest equality.
func (s *Store) GetByHash(ctx context.Context, codeHash string) (*models.InviteCode, error) {
	var inv models.InviteCode
	if err := s.c.FindOne(ctx, bson.M{"code_hash": codeHash}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// MarkExpired flips an active, past-expiry invite to expired. The status
// guard makes the transition atomic and idempotent; a concurrent call
// that loses the race simply matches nothing.
func (s *Store) MarkExpired(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":        id,
			"status":     models.InviteActive,
			"expires_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{
			"status":     models.InviteExpired,
			"updated_at": now,
		}})
	return err
}

// ExpireOutdated flips every active invite whose expiry has passed to
// expired. Redemption already expires codes lazily one at a time; this
// bulk form keeps listings honest for codes nobody tries to redeem.
func (s *Store) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     models.InviteActive,
			"expires_at": bson.M{"$ne": nil, "$lte": now},
		},
		bson.M{"$set": bson.M{
			"status":     models.InviteExpired,
			"updated_at": now,
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ConsumeUse atomically increments use_count by one, but only while the
// invite is still active and use_count remains below max_uses (or
// max_uses is unset). This is the single conditional update that closes
// the usage-cap race; there is no separate read-then-write.
//
// Returns the post-increment record, or ErrNotConsumable when the guard
// no longer holds because a concurrent redemption got there first.
func (s *Store) ConsumeUse(ctx context.Context, id primitive.ObjectID) (*models.InviteCode, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.InviteActive,
		"$or": []bson.M{
			{"max_uses": bson.M{"$exists": false}},
			{"max_uses": nil},
			{"$expr": bson.M{"$lt": bson.A{"$use_count", "$max_uses"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"use_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var inv models.InviteCode
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotConsumable
		}
		return nil, err
	}
	return &inv, nil
}

// ListActiveIDs returns the IDs of every active invite owned by the
// teacher, for the revocation loop.
func (s *Store) ListActiveIDs(ctx context.Context, teacherID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"teacher_id": teacherID, "status": models.InviteActive},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// Revoke flips a single active invite to revoked. The status guard makes
// each update atomic and idempotent on retry, so a crash mid-way through
// a revocation loop is recovered by re-invoking revoke.
func (s *Store) Revoke(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteActive},
		bson.M{"$set": bson.M{
			"status":     models.InviteRevoked,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
