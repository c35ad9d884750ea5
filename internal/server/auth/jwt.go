// Package auth issues and parses the HS256 tokens of the identity service.
// Access tokens authorize a signed-in identity. Provisioning tokens are
// short-lived and only allow completing (or rolling back) a fresh sign-up.
package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type Scope string

const (
	ScopeAccess    Scope = "access"
	ScopeProvision Scope = "provision"
)

// Claims carries the standard claims plus the identity id and token scope.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Scope  Scope  `json:"scope"`
}

// Allows reports whether the token scope is one of scopes.
func (c *Claims) Allows(scopes ...Scope) bool {
	return slices.Contains(scopes, c.Scope)
}

func GenerateToken(userID string, scope Scope, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(validityDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: userID,
		Scope:  scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expires, nil
}

// ParseToken validates tokenString. Expired tokens yield
// common.ErrTokenExpired and every other failure common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken returns the identity id of a valid access token.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	if !claims.Allows(ScopeAccess) {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}
