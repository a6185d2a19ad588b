// Package auth consumes bearer credentials issued by the external identity
// service. It only verifies; token issuance and user registration live
// elsewhere.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by the marketplace
const (
	RoleUser  = "normalUser"
	RoleAdmin = "adminUser"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the verified identity attached to a request
type Claims struct {
	UserID string
	Role   string
}

// Verifier validates a bearer credential and yields the caller's identity
type Verifier interface {
	Verify(token string) (Claims, error)
}

type tokenClaims struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256-signed tokens against a shared secret
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given signing secret
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and returns its identity claims
func (v *JWTVerifier) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %s", ErrTokenInvalid, err.Error())
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: missing userID claim", ErrTokenInvalid)
	}
	return Claims{UserID: claims.UserID, Role: claims.Role}, nil
}
