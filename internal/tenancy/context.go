package tenancy

import (
	"context"

	"github.com/leaguedesk/backend/internal/models"
)

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *RequestScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the RequestScope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *RequestScope {
	s, _ := ctx.Value(scopeKey{}).(*RequestScope)
	return s
}

// CurrentOrganization returns the organization resolved for the request in ctx.
func CurrentOrganization(ctx context.Context) (*models.Organization, bool) {
	return ScopeFrom(ctx).Organization(ctx)
}

// CurrentMembership returns the membership resolved for the request in ctx, or nil.
func CurrentMembership(ctx context.Context) *models.Membership {
	return ScopeFrom(ctx).Membership(ctx)
}
