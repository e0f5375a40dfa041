package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Referral order statuses. An order starts as pending when the create webhook
// arrives, becomes confirmed on fulfillment, and can branch to cancelled or
// refunded from either of those states. There are no other transitions.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusRefunded  = "refunded"
	OrderStatusCancelled = "cancelled"
)

// ReferralOrder is one attributed external order. ShopifyOrderID is the
// idempotency anchor: at most one document per external order ever exists.
// CommissionRate and CommissionAmount are snapshotted at creation time, so a
// later change to the affiliate's rate never rewrites accrued commission.
type ReferralOrder struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AffiliateID      primitive.ObjectID `json:"affiliateId" bson:"affiliateId"`
	ShopifyOrderID   string             `json:"shopifyOrderId" bson:"shopifyOrderId"`
	OrderNumber      string             `json:"orderNumber" bson:"orderNumber"` // e.g. "#1001"
	OrderTotal       float64            `json:"orderTotal" bson:"orderTotal"`
	Currency         string             `json:"currency" bson:"currency"`
	CommissionRate   float64            `json:"commissionRate" bson:"commissionRate"`
	CommissionAmount float64            `json:"commissionAmount" bson:"commissionAmount"`
	CustomerEmail    string             `json:"customerEmail,omitempty" bson:"customerEmail,omitempty"`
	OrderCreatedAt   string             `json:"orderCreatedAt,omitempty" bson:"orderCreatedAt,omitempty"`
	Status           string             `json:"status" bson:"status"`
	ConfirmedAt      *time.Time         `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsValidOrderStatus reports whether s is a known referral order status
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}
