package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the claims of an API access token. Subject names the client.
type AccessClaims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}
