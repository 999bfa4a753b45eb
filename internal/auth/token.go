package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ExtractUserIDFromJWT pulls the 'sub' claim out of a JWT without
// verifying the signature. Used on routes that accept both anonymous
// and authenticated callers (guest registration); verified identity
// comes from the OIDC middleware.
func ExtractUserIDFromJWT(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("sub claim missing")
	}

	return sub, nil
}

// OptionalUserID best-effort resolves the caller's identity on routes
// outside the auth middleware. Returns nil when no usable bearer token
// is present.
func OptionalUserID(r *http.Request) *uuid.UUID {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return &id
	}

	rawToken, err := ExtractTokenFromRequest(r)
	if err != nil {
		return nil
	}

	sub, err := ExtractUserIDFromJWT(rawToken)
	if err != nil {
		return nil
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return nil
	}
	return &id
}
