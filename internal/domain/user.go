package domain

import (
	"context"
	"errors"
)

// User is the authenticated caller. Identity is owned by the external
// provider; only the claims carried on the token are known here.
type User struct {
	ID    string
	Email string
	Name  string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type userContextKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userContextKey{}).(*User)
	return u
}

// UserIDFromContext returns the caller's id or ErrUnauthorized.
func UserIDFromContext(ctx context.Context) (string, error) {
	u := UserFromContext(ctx)
	if u == nil || u.ID == "" {
		return "", ErrUnauthorized
	}
	return u.ID, nil
}
