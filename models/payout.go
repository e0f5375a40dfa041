package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout is an immutable record of a commission disbursement to an affiliate.
// The balance effect (pending down, paid up) is applied by the ledger service,
// never by writing this document alone.
type Payout struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AffiliateID    primitive.ObjectID `json:"affiliateId" bson:"affiliateId"`
	Amount         float64            `json:"amount" bson:"amount"`
	Currency       string             `json:"currency" bson:"currency"`
	PaymentMethod  string             `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentDetails string             `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	Note           string             `json:"note,omitempty" bson:"note,omitempty"`
	Reference      string             `json:"reference" bson:"reference"`
	PaidAt         time.Time          `json:"paidAt" bson:"paidAt"`
}

// CreatePayoutRequest is the admin payload for recording a disbursement
type CreatePayoutRequest struct {
	AffiliateID    string  `json:"affiliateId" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Currency       string  `json:"currency"`
	PaymentMethod  string  `json:"paymentMethod"`
	PaymentDetails string  `json:"paymentDetails"`
	Note           string  `json:"note"`
}
