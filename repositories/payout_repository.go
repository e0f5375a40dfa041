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

// PayoutRepository is the MongoDB-backed payout store
type PayoutRepository struct {
	collection *mongo.Collection
}

// NewPayoutRepository creates the payout repository
func NewPayoutRepository(db *mongo.Client) *PayoutRepository {
	return &PayoutRepository{
		collection: config.GetCollection(db, "payouts"),
	}
}

// InsertPayout records one disbursement
func (r *PayoutRepository) InsertPayout(ctx context.Context, payout *models.Payout) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, payout)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		payout.ID = oid
	}
	return nil
}

// ListByAffiliate returns an affiliate's payouts, newest first
func (r *PayoutRepository) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, limit int64) ([]models.Payout, error) {
	return r.list(ctx, bson.M{"affiliateId": affiliateID}, limit)
}

// ListAll returns payouts across all affiliates, newest first
func (r *PayoutRepository) ListAll(ctx context.Context, limit int64) ([]models.Payout, error) {
	return r.list(ctx, bson.M{}, limit)
}

func (r *PayoutRepository) list(ctx context.Context, filter bson.M, limit int64) ([]models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payouts []models.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}
