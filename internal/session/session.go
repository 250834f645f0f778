// Package session carries the authenticated caller through a request.
// Handlers build a Session from the verified token and pass it to services
// explicitly; nothing reads the caller from package state.
package session

import (
	"context"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
)

// Session identifies who is acting and on which family group's ledger.
type Session struct {
	UserID  string
	GroupID string
	Email   string
}

// Validate ensures the session can scope group-owned data.
func (s Session) Validate() error {
	if s.UserID == "" {
		return apperrors.ErrUnauthorized
	}
	if s.GroupID == "" {
		return apperrors.ErrNoGroup
	}
	return nil
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
