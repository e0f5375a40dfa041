// utils/auth.go
package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/goyoulink/goyoulink_backend/middleware"
)

// GenerateJWT issues a signed token for a console or partner session.
// subjectID is the affiliate id for partners and the configured username for
// admins; role is one of middleware.RoleAdmin / middleware.RolePartner.
func GenerateJWT(subjectID, name, role string) (string, error) {
	claims := &middleware.JwtCustomClaims{
		SubjectID: subjectID,
		Name:      name,
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(middleware.GetJWTSecret()))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password against a stored value. The
// stored value may be a bcrypt hash or, for development setups, the plain
// password itself.
func CheckPassword(password, stored string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err == nil {
		return true
	}
	if len(stored) > 0 && stored[0] != '$' {
		return password == stored
	}
	return false
}
