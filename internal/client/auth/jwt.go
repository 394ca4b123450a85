// Package auth resolves the owner of a session from an access token.
//
// Token issuance and verification belong to the backend; the client only
// needs the subject. When a secret is configured the signature and expiry are
// checked, otherwise the token is decoded as is.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RndUsr76/Notish/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken returns an HS256 token whose subject is ownerID. The notish
// binary exposes it through the -t flag so a shared-secret setup can hand
// out tokens without a backend.
func GenerateToken(ownerID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ownerID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// OwnerFromToken returns the subject of tokenString. An empty secret skips
// signature checks.
func OwnerFromToken(tokenString string, secretKey []byte) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", fmt.Errorf("empty token: %w", common.ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}

	if len(secretKey) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			return secretKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return "", fmt.Errorf("%w: token expired", common.ErrInvalidToken)
			}
			return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
		}
		if !token.Valid {
			return "", common.ErrInvalidToken
		}
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", common.ErrInvalidToken)
	}
	return claims.Subject, nil
}
