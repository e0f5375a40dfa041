package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// generateCode produces a lowercase alphanumeric code of the requested length
// from crypto/rand. Codes end up in URLs, so they stay lowercase and free of
// padding characters.
func generateCode(length int) (string, error) {
	// base32 yields 8 characters per 5 random bytes; over-provision and trim
	randomBytes := make([]byte, length)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	code = strings.ToLower(code)
	code = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, code)

	if len(code) < length {
		code = code + strings.Repeat("0", length-len(code))
	}

	return code[:length], nil
}

// GenerateRefCode generates a referral code for a new affiliate.
// Example: k7v3nq2a
func GenerateRefCode() (string, error) {
	return generateCode(8)
}

// GenerateShortCode generates a short-link code for a new affiliate.
// Example: x4m2pq
func GenerateShortCode() (string, error) {
	return generateCode(6)
}
