// Package auth carries the caller identity established by the upstream
// identity provider through request contexts.
package auth

import (
	"context"
	"errors"
	"strings"
)

type contextKey struct{}

// AuthError is returned when an operation needs an identity and none is present.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "user not authenticated"
	}
	return "user not authenticated: " + e.Reason
}

// ErrUnauthenticated is the AuthError used when ctx carries no identity.
var ErrUnauthenticated = &AuthError{}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, strings.TrimSpace(userID))
}

// UserFromContext returns the identity carried by ctx, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// RequireUser is UserFromContext that fails with ErrUnauthenticated.
func RequireUser(ctx context.Context) (string, error) {
	userID, ok := UserFromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
