// Package serialstore persists admin-issued teacher activation serials.
//
// The single-claim race is closed here: Claim transitions unused → used
// with a single conditional update guarded by "still unused", so two
// concurrent redemptions of one serial yield exactly one success.
package serialstore

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
	// ErrNotFound is returned when no serial matches the given digest.
	ErrNotFound = errors.New("activation serial not found")
	// ErrAlreadyClaimed is returned when the unused → used transition
	// matched nothing: the serial was claimed or revoked concurrently.
	ErrAlreadyClaimed = errors.New("activation serial already claimed")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activation_serials")}
}

// EnsureIndexes creates the unique digest index plus a batch listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code_hash", Value: 1}},
			Options: options.Index().SetName("idx_serials_code_hash").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}},
			Options: options.Index().SetName("idx_serials_batch"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// CreateBatch inserts a batch of unused serials minted in one admin
// request. The caller supplies digests only.
func (s *Store) CreateBatch(ctx context.Context, serials []models.ActivationSerial) error {
	docs := make([]interface{}, len(serials))
	now := time.Now()
	for i := range serials {
		serials[i].ID = primitive.NewObjectID()
		if serials[i].Status == "" {
			serials[i].Status = models.SerialUnused
		}
		serials[i].CreatedAt = now
		docs[i] = serials[i]
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// DeleteBatch removes every serial minted under the given batch ID. Used
// to clean up a partially inserted batch before retrying it.
func (s *Store) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"batch_id": batchID})
	return err
}

// GetByHash looks up a serial by exact digest equality.
func (s *Store) GetByHash(ctx context.Context, codeHash string) (*models.ActivationSerial, error) {
	var serial models.ActivationSerial
	if err := s.c.FindOne(ctx, bson.M{"code_hash": codeHash}).Decode(&serial); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &serial, nil
}

// Claim atomically transitions a serial unused → used for the given user.
// The "still unused" guard is part of the update filter, so losing a race
// against a concurrent claim returns ErrAlreadyClaimed instead of
// double-claiming.
func (s *Store) Claim(ctx context.Context, id, userID primitive.ObjectID, now time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SerialUnused},
		bson.M{"$set": bson.M{
			"status":  models.SerialUsed,
			"used_by": userID,
			"used_at": now,
		}})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}
