package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Traffic sources recorded on clicks. "direct" covers hits without a
// recognized source alias.
const (
	ClickSourceFacebook  = "facebook"
	ClickSourceInstagram = "instagram"
	ClickSourceThreads   = "threads"
	ClickSourceYoutube   = "youtube"
	ClickSourceTiktok    = "tiktok"
	ClickSourceDirect    = "direct"
)

// Click is an append-only record of one resolved short-link hit.
// Clicks are never mutated or deleted.
type Click struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AffiliateID primitive.ObjectID `json:"affiliateId" bson:"affiliateId"`
	IPAddress   string             `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent   string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Referer     string             `json:"referer,omitempty" bson:"referer,omitempty"`
	LandedURL   string             `json:"landedUrl,omitempty" bson:"landedUrl,omitempty"`
	Source      string             `json:"source" bson:"source"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// SourceFromAlias maps a short-link source alias (the "src" query parameter)
// to its canonical traffic source name
func SourceFromAlias(alias string) string {
	switch alias {
	case "fb":
		return ClickSourceFacebook
	case "ig":
		return ClickSourceInstagram
	case "th":
		return ClickSourceThreads
	case "yt":
		return ClickSourceYoutube
	case "tt":
		return ClickSourceTiktok
	}
	return ClickSourceDirect
}
