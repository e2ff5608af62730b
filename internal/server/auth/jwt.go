// Package auth mints and verifies the HS256 session tokens the transport
// layer uses to identify callers.
package auth

import (
	"errors"
	"time"

	"github.com/emotune/emotune/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claims with the caller's identity: the
// internal user id and the opaque external OpenID.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	OpenID string `json:"openId"`
}

// GenerateToken signs a session token for the given identity.
func GenerateToken(userID int64, openID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		OpenID: openID,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies a token and returns its claims. Expired tokens map
// to common.ErrTokenExpired, anything else invalid to
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
