package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goyoulink/goyoulink_backend/models"
)

// Store errors. Everything except ErrInsufficientPending is a business no-op
// at the webhook boundary; callers acknowledge and move on.
var (
	// ErrNotFound means the requested document does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateOrder means a referral order with that external order id
	// already exists (replayed create webhook)
	ErrDuplicateOrder = errors.New("referral order already exists")
	// ErrNoTransition means the order is not in a status the requested
	// transition is legal from (replayed or out-of-order webhook)
	ErrNoTransition = errors.New("no legal status transition")
	// ErrInsufficientPending rejects a payout above the affiliate's pending
	// commission balance
	ErrInsufficientPending = errors.New("payout exceeds pending commission")
)

// AffiliateStore is the persistence surface the ledger and resolvers need for
// affiliates. The balance mutations must be atomic at the storage layer (the
// Mongo implementation uses $inc and pipeline updates); that is what makes
// concurrent webhook deliveries safe without a process-wide lock.
type AffiliateStore interface {
	AffiliateByID(ctx context.Context, id primitive.ObjectID) (*models.Affiliate, error)
	AffiliateByRefCode(ctx context.Context, refCode string) (*models.Affiliate, error)
	AffiliateByShortCode(ctx context.Context, shortCode string) (*models.Affiliate, error)

	// IncrementClicks adds one to totalClicks
	IncrementClicks(ctx context.Context, id primitive.ObjectID) error

	// IncrementOrderStats applies the order-creation effect:
	// totalOrders += 1, totalSales += orderTotal
	IncrementOrderStats(ctx context.Context, id primitive.ObjectID, orderTotal float64) error

	// AccrueCommission applies the fulfillment effect:
	// pendingCommission += amount, totalCommission += amount
	AccrueCommission(ctx context.Context, id primitive.ObjectID, amount float64) error

	// ReverseCommission removes min(pendingCommission, amount) from both
	// pendingCommission and totalCommission, keeping
	// totalCommission == pendingCommission + paidCommission and the zero
	// floor intact in one atomic step
	ReverseCommission(ctx context.Context, id primitive.ObjectID, amount float64) error

	// DebitPendingForPayout moves commission from pending to paid. When
	// allowOver is false and pendingCommission < amount it fails with
	// ErrInsufficientPending; when true it moves min(pending, amount).
	DebitPendingForPayout(ctx context.Context, id primitive.ObjectID, amount float64, allowOver bool) error
}

// OrderStore is the persistence surface for referral orders. Transition is the
// compare-and-swap the whole state machine rests on: two concurrent identical
// webhooks race through it and exactly one wins.
type OrderStore interface {
	OrderByShopifyID(ctx context.Context, shopifyOrderID string) (*models.ReferralOrder, error)

	// InsertOrder creates the order document, failing with ErrDuplicateOrder
	// when one already exists for that shopifyOrderId
	InsertOrder(ctx context.Context, order *models.ReferralOrder) error

	// Transition atomically moves the order to toStatus if its current status
	// is one of fromStatuses, setting confirmedAt when given. It returns the
	// order as it was before the transition, ErrNotFound when no document
	// exists, or ErrNoTransition when the status rules it out.
	Transition(ctx context.Context, shopifyOrderID string, fromStatuses []string, toStatus string, confirmedAt *time.Time) (*models.ReferralOrder, error)
}

// ClickStore persists append-only click records
type ClickStore interface {
	InsertClick(ctx context.Context, click *models.Click) error
}

// PayoutStore persists immutable payout records
type PayoutStore interface {
	InsertPayout(ctx context.Context, payout *models.Payout) error
}

// EventPublisher receives ledger events for the live admin dashboard feed.
// Publishing is fire-and-forget; it never affects ledger outcomes.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}
