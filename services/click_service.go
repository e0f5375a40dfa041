package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/goyoulink/goyoulink_backend/models"
)

const shortCodeCacheTTL = 5 * time.Minute

// ClickMeta carries the request metadata recorded with a click
type ClickMeta struct {
	IPAddress string
	UserAgent string
	Referer   string
	LandedURL string
	Source    string
}

// ClickRecorder resolves short-link codes to affiliates and records click
// events. Resolution goes through a Redis cache when one is available; the
// redirect path is hot and a Mongo round trip per hit is avoidable.
type ClickRecorder struct {
	affiliates AffiliateStore
	clicks     ClickStore
	ledger     *Ledger
	cache      *redis.Client // nil when Redis is unavailable
}

// NewClickRecorder creates the click recorder. cache may be nil.
func NewClickRecorder(affiliates AffiliateStore, clicks ClickStore, ledger *Ledger, cache *redis.Client) *ClickRecorder {
	return &ClickRecorder{
		affiliates: affiliates,
		clicks:     clicks,
		ledger:     ledger,
		cache:      cache,
	}
}

// Record resolves shortCode and, for an active affiliate, appends a click row
// and bumps the click counter through the ledger. It returns (nil, nil) for
// unknown or inactive affiliates: the caller still redirects, just without
// attribution, and nothing is recorded.
//
// The click insert and the counter increment are deliberately not atomic with
// each other; a missed counter costs an analytics point, blocking the
// redirect costs a customer.
func (s *ClickRecorder) Record(ctx context.Context, shortCode string, meta ClickMeta) (*models.Affiliate, error) {
	affiliate, err := s.resolve(ctx, shortCode)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if affiliate.Status != models.AffiliateStatusActive {
		return nil, nil
	}

	source := meta.Source
	if source == "" {
		source = models.ClickSourceDirect
	}

	click := &models.Click{
		AffiliateID: affiliate.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Referer:     meta.Referer,
		LandedURL:   meta.LandedURL,
		Source:      source,
		CreatedAt:   time.Now(),
	}

	if err := s.clicks.InsertClick(ctx, click); err != nil {
		return nil, err
	}

	if err := s.ledger.IncrementClicks(ctx, affiliate); err != nil {
		log.Printf("Error incrementing click counter for affiliate %s: %v", affiliate.ID.Hex(), err)
	}

	return affiliate, nil
}

func (s *ClickRecorder) resolve(ctx context.Context, shortCode string) (*models.Affiliate, error) {
	cacheKey := "shortcode:" + shortCode

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var affiliate models.Affiliate
			if err := json.Unmarshal([]byte(cached), &affiliate); err == nil {
				return &affiliate, nil
			}
		}
	}

	affiliate, err := s.affiliates.AffiliateByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(affiliate); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, shortCodeCacheTTL).Err(); err != nil {
				log.Printf("Warning: failed to cache short code %s: %v", shortCode, err)
			}
		}
	}

	return affiliate, nil
}
