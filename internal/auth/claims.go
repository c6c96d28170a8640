// Package auth decodes the bearer credential into the claim set the handlers
// consume. Signature verification happens upstream at the gateway; the token
// is trusted here and only decoded.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"fuellock/internal/apperr"
)

const (
	RoleCustomer = "customer"
	RoleDealer   = "dealer"
	RoleEmployee = "employee"
)

// Claims is the identity attached to a request.
type Claims struct {
	Role      string
	UserCode  string
	StationID string
	Email     string
	Name      string
}

// Decode extracts claims from a bearer token without verifying the
// signature. An empty token maps to MissingTokenError.
func Decode(token string) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Claims{}, apperr.MissingToken()
	}

	mapClaims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, mapClaims)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	return Claims{
		Role:      stringClaim(mapClaims, "custom:role"),
		UserCode:  stringClaim(mapClaims, "custom:userCode"),
		StationID: stringClaim(mapClaims, "custom:stationID"),
		Email:     stringClaim(mapClaims, "email"),
		Name:      stringClaim(mapClaims, "name"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return v
}

type ctxKey struct{}

// ToContext attaches the claims to the request context.
func ToContext(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// FromContext returns the claims attached by the auth middleware.
func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(Claims)
	return claims, ok
}
