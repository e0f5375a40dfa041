package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/models"
)

// ClickRepository is the MongoDB-backed click store. Clicks are append-only;
// there are no update or delete operations here on purpose.
type ClickRepository struct {
	collection *mongo.Collection
}

// NewClickRepository creates the click repository
func NewClickRepository(db *mongo.Client) *ClickRepository {
	return &ClickRepository{
		collection: config.GetCollection(db, "clicks"),
	}
}

// InsertClick appends one click record
func (r *ClickRepository) InsertClick(ctx context.Context, click *models.Click) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, click)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		click.ID = oid
	}
	return nil
}

// ListByAffiliate returns an affiliate's recent clicks, newest first
func (r *ClickRepository) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, limit int64) ([]models.Click, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"affiliateId": affiliateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var clicks []models.Click
	if err := cursor.All(ctx, &clicks); err != nil {
		return nil, err
	}
	return clicks, nil
}

// CountBySource derives an affiliate's per-source click counts. Counts are
// computed from the click rows, not stored separately.
func (r *ClickRepository) CountBySource(ctx context.Context, affiliateID primitive.ObjectID) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"affiliateId": affiliateID}}},
		{{Key: "$group", Value: bson.M{"_id": "$source", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Source string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, res := range results {
		counts[res.Source] = res.Count
	}
	return counts, nil
}
