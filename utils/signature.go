package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log"
)

// VerifyWebhookSignature checks a Shopify-style HMAC header against the raw
// request body. The digest is HMAC-SHA256 over the exact bytes received,
// base64-encoded; callers must pass the body as read off the wire, because
// re-serializing the parsed JSON can change the byte layout and break the
// signature.
//
// An empty secret accepts everything. That is the development-mode bypass and
// it is logged every time so it can never go unnoticed in production.
func VerifyWebhookSignature(secret string, body []byte, signatureHeader string) bool {
	if secret == "" {
		log.Println("Warning: webhook signature verification skipped, no secret configured")
		return true
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// hmac.Equal is constant-time
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

// ComputeWebhookSignature returns the signature header value for a body,
// used by tests and outbound platform simulation
func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
