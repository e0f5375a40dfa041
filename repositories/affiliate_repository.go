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

const queryTimeout = 10 * time.Second

// AffiliateRepository is the MongoDB-backed affiliate store. All balance
// mutations are single atomic update operations ($inc or pipeline updates);
// there is no read-modify-write anywhere, which is what keeps concurrent
// webhook deliveries from losing updates.
type AffiliateRepository struct {
	collection *mongo.Collection
}

// NewAffiliateRepository creates the affiliate repository
func NewAffiliateRepository(db *mongo.Client) *AffiliateRepository {
	return &AffiliateRepository{
		collection: config.GetCollection(db, "affiliates"),
	}
}

// Insert creates a new affiliate document
func (r *AffiliateRepository) Insert(ctx context.Context, affiliate *models.Affiliate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, affiliate)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		affiliate.ID = oid
	}
	return nil
}

func (r *AffiliateRepository) findOne(ctx context.Context, filter bson.M) (*models.Affiliate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var affiliate models.Affiliate
	err := r.collection.FindOne(ctx, filter).Decode(&affiliate)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &affiliate, nil
}

// AffiliateByID looks up an affiliate by id
func (r *AffiliateRepository) AffiliateByID(ctx context.Context, id primitive.ObjectID) (*models.Affiliate, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// AffiliateByRefCode looks up an affiliate by referral code
func (r *AffiliateRepository) AffiliateByRefCode(ctx context.Context, refCode string) (*models.Affiliate, error) {
	return r.findOne(ctx, bson.M{"refCode": refCode})
}

// AffiliateByShortCode looks up an affiliate by short-link code
func (r *AffiliateRepository) AffiliateByShortCode(ctx context.Context, shortCode string) (*models.Affiliate, error) {
	return r.findOne(ctx, bson.M{"shortCode": shortCode})
}

// List returns affiliates, optionally filtered by status and type, newest
// first
func (r *AffiliateRepository) List(ctx context.Context, status, affiliateType string) ([]models.Affiliate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if affiliateType != "" {
		filter["type"] = affiliateType
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var affiliates []models.Affiliate
	if err := cursor.All(ctx, &affiliates); err != nil {
		return nil, err
	}
	return affiliates, nil
}

// Update applies the given field updates and bumps updatedAt
func (r *AffiliateRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set["updatedAt"] = time.Now()
	result, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// IncrementClicks adds one to totalClicks
func (r *AffiliateRepository) IncrementClicks(ctx context.Context, id primitive.ObjectID) error {
	return r.atomicUpdate(ctx, id, bson.M{
		"$inc": bson.M{"totalClicks": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

// IncrementOrderStats applies the order-creation counters
func (r *AffiliateRepository) IncrementOrderStats(ctx context.Context, id primitive.ObjectID, orderTotal float64) error {
	return r.atomicUpdate(ctx, id, bson.M{
		"$inc": bson.M{"totalOrders": 1, "totalSales": orderTotal},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

// AccrueCommission credits pending and lifetime commission on fulfillment
func (r *AffiliateRepository) AccrueCommission(ctx context.Context, id primitive.ObjectID, amount float64) error {
	return r.atomicUpdate(ctx, id, bson.M{
		"$inc": bson.M{"pendingCommission": amount, "totalCommission": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

// ReverseCommission removes min(pendingCommission, amount) from pending and
// lifetime commission in one pipeline update. Field references in a pipeline
// stage read the pre-update values, so both expressions see the same
// pendingCommission.
func (r *AffiliateRepository) ReverseCommission(ctx context.Context, id primitive.ObjectID, amount float64) error {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"pendingCommission": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$pendingCommission", amount}}}},
			"totalCommission":   bson.M{"$subtract": bson.A{"$totalCommission", bson.M{"$min": bson.A{"$pendingCommission", amount}}}},
			"updatedAt":         time.Now(),
		}},
	}
	return r.atomicUpdate(ctx, id, pipeline)
}

// DebitPendingForPayout moves commission from pending to paid. In strict mode
// the match condition doubles as the balance check, so a concurrent payout
// can never push pending below zero.
func (r *AffiliateRepository) DebitPendingForPayout(ctx context.Context, id primitive.ObjectID, amount float64, allowOver bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if !allowOver {
		result, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "pendingCommission": bson.M{"$gte": amount}},
			bson.M{
				"$inc": bson.M{"pendingCommission": -amount, "paidCommission": amount},
				"$set": bson.M{"updatedAt": time.Now()},
			})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			if _, lookupErr := r.AffiliateByID(ctx, id); lookupErr != nil {
				return lookupErr
			}
			return services.ErrInsufficientPending
		}
		return nil
	}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"paidCommission":    bson.M{"$add": bson.A{"$paidCommission", bson.M{"$min": bson.A{"$pendingCommission", amount}}}},
			"pendingCommission": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$pendingCommission", amount}}}},
			"updatedAt":         time.Now(),
		}},
	}
	result, err := r.collection.UpdateByID(ctx, id, pipeline)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *AffiliateRepository) atomicUpdate(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// CountByStatus counts affiliates in the given status
func (r *AffiliateRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// SumBalances aggregates total sales, lifetime commission and pending
// commission across all affiliates for the admin dashboard
func (r *AffiliateRepository) SumBalances(ctx context.Context) (totalSales, totalCommission, pendingCommission float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalSales":        bson.M{"$sum": "$totalSales"},
			"totalCommission":   bson.M{"$sum": "$totalCommission"},
			"pendingCommission": bson.M{"$sum": "$pendingCommission"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSales        float64 `bson:"totalSales"`
		TotalCommission   float64 `bson:"totalCommission"`
		PendingCommission float64 `bson:"pendingCommission"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, 0, nil
	}
	return results[0].TotalSales, results[0].TotalCommission, results[0].PendingCommission, nil
}
