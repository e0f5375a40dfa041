package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/goyoulink/goyoulink_backend/models"
)

// Attribution signal sources, in resolution priority order
const (
	AttributionSourceAttribute   = "note_attribute"
	AttributionSourceDiscount    = "discount_code"
	AttributionSourceNote        = "order_note"
	AttributionSourceLandingSite = "landing_site"
)

// Cart attribute names the client-side tracking script writes the referral
// code under
var refAttributeNames = []string{"ref", "referral_code", "affiliate"}

// Attribution is the outcome of resolving a referral code from an order.
// An empty Code means the order is not attributed to anyone; that is a normal
// outcome, not an error.
type Attribution struct {
	Code   string `json:"code"`
	Source string `json:"source,omitempty"`
}

// RefCodeLookup is the slice of affiliate storage the resolver needs
type RefCodeLookup interface {
	AffiliateByRefCode(ctx context.Context, refCode string) (*models.Affiliate, error)
}

// AttributionResolver extracts a referral code from an order payload by
// trying signal sources in strict priority order. Structured cart attributes
// are set by the tracking script and are the most trustworthy signal, so they
// always win over the text and URL heuristics further down; the order of the
// checks must not be changed.
type AttributionResolver struct {
	affiliates RefCodeLookup
}

// NewAttributionResolver creates a resolver backed by the affiliate store
func NewAttributionResolver(affiliates RefCodeLookup) *AttributionResolver {
	return &AttributionResolver{affiliates: affiliates}
}

// Resolve returns the first referral code found in the order event. Only
// store failures surface as errors; "nothing matched" is a zero Attribution.
func (r *AttributionResolver) Resolve(ctx context.Context, ev *models.OrderEvent) (Attribution, error) {
	// 1. Structured cart attributes
	for _, attr := range ev.NoteAttributes {
		for _, name := range refAttributeNames {
			if attr.Name == name && attr.Value != "" {
				return Attribution{Code: attr.Value, Source: AttributionSourceAttribute}, nil
			}
		}
	}

	// 2. Discount codes that happen to be an affiliate's ref code. The
	// conflation is deliberate: a promo code equal to a ref code counts as
	// attribution.
	for _, discount := range ev.DiscountCodes {
		if discount.Code == "" {
			continue
		}
		_, err := r.affiliates.AffiliateByRefCode(ctx, discount.Code)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return Attribution{}, err
		}
		return Attribution{Code: discount.Code, Source: AttributionSourceDiscount}, nil
	}

	// 3. Free-text order note, e.g. "ref:alice123"
	if ev.Note != "" {
		for _, part := range strings.Fields(ev.Note) {
			if strings.HasPrefix(part, "ref:") && len(part) > 4 {
				return Attribution{Code: part[4:], Source: AttributionSourceNote}, nil
			}
		}
	}

	// 4. Landing page URL query parameter
	if ev.LandingSite != "" && strings.Contains(ev.LandingSite, "ref=") {
		if parsed, err := url.Parse(ev.LandingSite); err == nil {
			if ref := parsed.Query().Get("ref"); ref != "" {
				return Attribution{Code: ref, Source: AttributionSourceLandingSite}, nil
			}
		}
	}

	return Attribution{}, nil
}
