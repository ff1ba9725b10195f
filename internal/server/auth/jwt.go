// Package auth issues and checks the HS256 access tokens guarding the
// maintenance RPCs.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the admin flag.
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// GenerateAdminToken signs an admin token for subject valid for the given
// duration.
func GenerateAdminToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Admin: true,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAdminToken verifies tokenString and returns its claims. Expired
// tokens yield common.ErrTokenExpired; valid tokens without the admin flag
// yield common.ErrorUnauthorized.
func ParseAdminToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if !claims.Admin {
		return nil, common.ErrorUnauthorized
	}

	return claims, nil
}
