package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/model"
)

// RoundRepo persists finished rounds. Live session state never touches
// Mongo; this is history only.
type RoundRepo interface {
	Insert(ctx context.Context, rec *model.RoundRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]*model.RoundRecord, error)
}

type roundRepo struct {
	collection *mongo.Collection
}

// NewRoundRepo creates a new round repository.
func NewRoundRepo(db *mongo.Database) RoundRepo {
	return &roundRepo{
		collection: db.Collection("rounds"),
	}
}

func (r *roundRepo) Insert(ctx context.Context, rec *model.RoundRecord) error {
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *roundRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.RoundRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "endedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.RoundRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
