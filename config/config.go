// config/config.go
package config

import (
	"log"
	"os"
	"strconv"
)

// Settings holds the environment-driven configuration for the service
type Settings struct {
	// Shopify webhook verification secret. Empty disables verification
	// (development only; the verifier logs a warning on every bypass).
	ShopifyWebhookSecret string

	// DefaultCommissionRate is applied to new affiliates created without an
	// explicit rate, percent of order total.
	DefaultCommissionRate float64

	// RedirectTarget is the storefront short links resolve to.
	RedirectTarget string
	// ShortURLDomain is the public base of the short-link front door.
	ShortURLDomain string

	// AllowOverpayout controls payouts above the affiliate's pending balance.
	// When false (default) such payouts are rejected; when true the balance
	// effect is clamped to the available pending commission.
	AllowOverpayout bool

	// ReverseOnCancel controls whether cancelling a confirmed order reverses
	// its accrued commission the way a refund does. Default keeps the
	// upstream platform's asymmetry: only refunds reverse.
	ReverseOnCancel bool

	AdminUsername string
	AdminPassword string

	// SMTP settings for payout notification mail; empty host disables it.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadSettings reads configuration from environment variables, applying the
// same defaults in every environment
func LoadSettings() *Settings {
	s := &Settings{
		ShopifyWebhookSecret:  os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		DefaultCommissionRate: envFloat("DEFAULT_COMMISSION_RATE", 5),
		RedirectTarget:        envString("REDIRECT_TARGET", "https://goyoutati.com"),
		ShortURLDomain:        envString("SHORT_URL_DOMAIN", "https://go.goyoulink.com"),
		AllowOverpayout:       envBool("ALLOW_OVERPAYOUT", false),
		ReverseOnCancel:       envBool("REVERSE_ON_CANCEL", false),
		AdminUsername:         envString("ADMIN_USERNAME", "admin"),
		AdminPassword:         envString("ADMIN_PASSWORD", "admin"),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              int(envFloat("SMTP_PORT", 587)),
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:              os.Getenv("SMTP_FROM"),
	}

	if s.ShopifyWebhookSecret == "" {
		log.Println("Warning: SHOPIFY_WEBHOOK_SECRET is not set, webhook signature verification is disabled")
	}

	return s
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid value for %s, using default", key)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Warning: invalid value for %s, using default", key)
	}
	return fallback
}
