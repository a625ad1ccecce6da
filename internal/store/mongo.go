package store

import (
	"context"
	"errors"
	"fmt"

	"pulse-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const maxUpdateRetries = 3

// MongoStore is a Store backed by a MongoDB collection. Update uses an
// optimistic compare-and-swap on the status field: the replace filter pins the
// status observed by the mutator, so of two concurrent transitions exactly one
// commits and the loser re-reads the finalized record.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("feedbacks"),
	}
}

func (s *MongoStore) Insert(ctx context.Context, item *models.FeedbackItem) error {
	_, err := s.collection.InsertOne(ctx, item)
	return err
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.FeedbackItem, error) {
	var item models.FeedbackItem
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]models.FeedbackItem, error) {
	// Sort by created_at ascending with _id as tiebreaker to mirror the
	// memory store's insertion order.
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.FeedbackItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, mutate func(*models.FeedbackItem) error) (*models.FeedbackItem, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}

		updated := *current
		if err := mutate(&updated); err != nil {
			return nil, err
		}

		result, err := s.collection.ReplaceOne(ctx, bson.M{
			"_id":    id,
			"status": current.Status,
		}, &updated)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 1 {
			return &updated, nil
		}
		// Lost the race against a concurrent update; reload and retry so the
		// mutator can re-check its preconditions against the new state.
	}
	return nil, fmt.Errorf("update of feedback %s kept conflicting with concurrent writes", id)
}

// EnsureIndexes creates the indexes the read path relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
