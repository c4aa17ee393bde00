// Package auth resolves the acting user for per-user resources. The
// API Gateway JWT authorizer has already verified the token by the time
// a request reaches us, so claims are read without re-verification.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names checked when resolving the acting user, in order.
const (
	ClaimCognitoUsername = "cognito:username"
	ClaimSubject         = "sub"
)

// HeaderUserID carries the resolved user id when the Lambda entrypoint
// has already read the gateway authorizer claims.
const HeaderUserID = "X-User-ID"

// UserIDFromClaims picks the acting user id out of a verified claim
// set: the Cognito username when present, else the token subject.
func UserIDFromClaims(claims map[string]string) string {
	if username := claims[ClaimCognitoUsername]; username != "" {
		return username
	}
	return claims[ClaimSubject]
}

// ResolveUserID finds the acting user's id for a request. Resolution
// order: the gateway-resolved header, the bearer token's claims, then
// the caller-supplied fallback (body or query value) for
// non-interactive calls. Returns "" when nothing resolves.
func ResolveUserID(r *http.Request, fallback string) string {
	if id := r.Header.Get(HeaderUserID); id != "" {
		return id
	}

	if token := BearerToken(r); token != "" {
		if id := userIDFromToken(token); id != "" {
			return id
		}
	}

	return fallback
}

// BearerToken extracts the bearer token from the Authorization header,
// or "" when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		authHeader = r.Header.Get("authorization")
	}
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// userIDFromToken reads identity claims from a JWT without verifying
// the signature. Only used behind the gateway's own verification.
func userIDFromToken(tokenString string) string {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	if username, ok := claims[ClaimCognitoUsername].(string); ok && username != "" {
		return username
	}
	if sub, ok := claims[ClaimSubject].(string); ok && sub != "" {
		return sub
	}
	return ""
}
