package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/models"
	"github.com/goyoulink/goyoulink_backend/services"
)

// OrderRepository is the MongoDB-backed referral order store. The unique
// index on shopifyOrderId enforces create idempotency; Transition is a
// findAndModify compare-and-swap keyed on the current status.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates the order repository
func NewOrderRepository(db *mongo.Client) *OrderRepository {
	return &OrderRepository{
		collection: config.GetCollection(db, "referralOrders"),
	}
}

// OrderByShopifyID looks up an order by its external order id
func (r *OrderRepository) OrderByShopifyID(ctx context.Context, shopifyOrderID string) (*models.ReferralOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var order models.ReferralOrder
	err := r.collection.FindOne(ctx, bson.M{"shopifyOrderId": shopifyOrderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderByID looks up an order by its document id
func (r *OrderRepository) OrderByID(ctx context.Context, id primitive.ObjectID) (*models.ReferralOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var order models.ReferralOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// InsertOrder creates the order document. A duplicate key error on the
// shopifyOrderId index maps to ErrDuplicateOrder: the replayed webhook case.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *models.ReferralOrder) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicateOrder
	}
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// Transition atomically moves an order between statuses. The status filter is
// part of the findAndModify match, so of any number of concurrent identical
// transitions exactly one observes a match and wins.
func (r *OrderRepository) Transition(ctx context.Context, shopifyOrderID string, fromStatuses []string, toStatus string, confirmedAt *time.Time) (*models.ReferralOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"shopifyOrderId": shopifyOrderID,
		"status":         bson.M{"$in": fromStatuses},
	}

	set := bson.M{
		"status":    toStatus,
		"updatedAt": time.Now(),
	}
	if confirmedAt != nil {
		set["confirmedAt"] = *confirmedAt
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prior models.ReferralOrder
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&prior)
	if err == mongo.ErrNoDocuments {
		// Distinguish "no such order" from "order in a state the transition
		// is illegal from" for caller messaging; both are business no-ops.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"shopifyOrderId": shopifyOrderID})
		if countErr != nil {
			return nil, countErr
		}
		if count == 0 {
			return nil, services.ErrNotFound
		}
		return nil, services.ErrNoTransition
	}
	if err != nil {
		return nil, err
	}
	return &prior, nil
}

// ListByAffiliate returns an affiliate's orders, optionally filtered by
// status, newest first
func (r *OrderRepository) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, status string, limit int64) ([]models.ReferralOrder, error) {
	filter := bson.M{"affiliateId": affiliateID}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter, limit)
}

// ListAll returns orders across all affiliates, optionally filtered by status
func (r *OrderRepository) ListAll(ctx context.Context, status string, limit int64) ([]models.ReferralOrder, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter, limit)
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M, limit int64) ([]models.ReferralOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.ReferralOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders, optionally restricted to one affiliate and/or status
func (r *OrderRepository) Count(ctx context.Context, affiliateID *primitive.ObjectID, status string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if affiliateID != nil {
		filter["affiliateId"] = *affiliateID
	}
	if status != "" {
		filter["status"] = status
	}
	return r.collection.CountDocuments(ctx, filter)
}
