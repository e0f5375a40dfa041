package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Affiliate statuses
const (
	AffiliateStatusActive   = "active"
	AffiliateStatusInactive = "inactive"
)

// SocialLinks holds the affiliate's social media profiles
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
	Threads   string `json:"threads,omitempty" bson:"threads,omitempty"`
	Youtube   string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Tiktok    string `json:"tiktok,omitempty" bson:"tiktok,omitempty"`
}

// Affiliate represents a referring partner. RefCode is the attribution token
// carried in tracking links and webhooks; ShortCode is the redirect token used
// by the short-link front door. Both are unique.
//
// The commission counters are owned exclusively by the ledger service:
// TotalCommission == PendingCommission + PaidCommission at all times, and
// PendingCommission / PaidCommission never go negative.
type Affiliate struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty"`
	Domain         string             `json:"domain,omitempty" bson:"domain,omitempty"`
	RefCode        string             `json:"refCode" bson:"refCode"`
	ShortCode      string             `json:"shortCode" bson:"shortCode"`
	CommissionRate float64            `json:"commissionRate" bson:"commissionRate"`
	Status         string             `json:"status" bson:"status"` // "active", "inactive"
	Type           string             `json:"type,omitempty" bson:"type,omitempty"`
	Social         *SocialLinks       `json:"social,omitempty" bson:"social,omitempty"`

	TotalClicks       int64   `json:"totalClicks" bson:"totalClicks"`
	TotalOrders       int64   `json:"totalOrders" bson:"totalOrders"`
	TotalSales        float64 `json:"totalSales" bson:"totalSales"`
	TotalCommission   float64 `json:"totalCommission" bson:"totalCommission"`
	PendingCommission float64 `json:"pendingCommission" bson:"pendingCommission"`
	PaidCommission    float64 `json:"paidCommission" bson:"paidCommission"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateAffiliateRequest is the admin payload for registering a new affiliate
type CreateAffiliateRequest struct {
	Name           string       `json:"name" validate:"required"`
	Email          string       `json:"email" validate:"omitempty,email"`
	Domain         string       `json:"domain"`
	RefCode        string       `json:"refCode"` // generated when empty
	CommissionRate *float64     `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
	Type           string       `json:"type"`
	Social         *SocialLinks `json:"social"`
}

// UpdateAffiliateRequest is the admin payload for editing an affiliate.
// Rate changes never touch existing orders; their commission is snapshotted.
type UpdateAffiliateRequest struct {
	Name           *string      `json:"name"`
	Email          *string      `json:"email" validate:"omitempty,email"`
	Domain         *string      `json:"domain"`
	CommissionRate *float64     `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
	Status         *string      `json:"status" validate:"omitempty,oneof=active inactive"`
	Type           *string      `json:"type"`
	Social         *SocialLinks `json:"social"`
}

// AffiliateSummary is the per-affiliate dashboard view
type AffiliateSummary struct {
	Affiliate            *Affiliate `json:"affiliate"`
	PendingOrdersCount   int64      `json:"pendingOrdersCount"`
	ConfirmedOrdersCount int64      `json:"confirmedOrdersCount"`
	ShortURL             string     `json:"shortUrl"`
}
