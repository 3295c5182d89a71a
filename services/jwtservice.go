package services

import (
	"time"

	"taskboard/model"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "taskboard"

// CreateAccessToken signs an API access token for client.
func CreateAccessToken(secret, client string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.AccessClaims{
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   client,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
