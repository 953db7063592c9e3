// Package tenancy resolves the current organization of a request and scopes
// queries on tenant-owned tables to it.
package tenancy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/models"
)

// MembershipReader returns a user's earliest membership (with its organization
// loaded), or nil when the user belongs to no organization.
type MembershipReader interface {
	FirstMembership(ctx context.Context, userID int64) (*models.Membership, error)
}

// Resolver computes a principal's current organization from the membership store.
type Resolver struct {
	store  MembershipReader
	logger *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store MembershipReader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the membership that defines userID's current organization,
// or nil. A userID of 0 is an anonymous principal. Store errors are logged and
// reported as absence.
func (r *Resolver) Resolve(ctx context.Context, userID int64) *models.Membership {
	m, _ := r.resolve(ctx, userID)
	return m
}

func (r *Resolver) resolve(ctx context.Context, userID int64) (*models.Membership, bool) {
	if userID == 0 {
		return nil, true
	}
	m, err := r.store.FirstMembership(ctx, userID)
	if err != nil {
		r.logger.Warn("resolve current organization", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	if m == nil || m.Organization == nil {
		return nil, true
	}
	return m, true
}

// NewScope returns a RequestScope for one request made by userID (0 for anonymous).
// A RequestScope must never be shared between requests.
func (r *Resolver) NewScope(userID int64) *RequestScope {
	return &RequestScope{resolver: r, userID: userID}
}

// RequestScope memoizes the current organization for the lifetime of a single request.
type RequestScope struct {
	resolver *Resolver
	userID   int64

	mu         sync.Mutex
	resolved   bool
	membership *models.Membership
}

// UserID returns the principal the scope was created for.
func (s *RequestScope) UserID() int64 {
	if s == nil {
		return 0
	}
	return s.userID
}

// Membership returns the current membership, resolving it on first use.
// A nil scope resolves to nil.
func (s *RequestScope) Membership(ctx context.Context) *models.Membership {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.membership
	}
	m, ok := s.resolver.resolve(ctx, s.userID)
	// failed lookups are retried on next access
	if ok {
		s.membership = m
		s.resolved = true
	}
	return m
}

// Organization returns the current organization and whether one exists.
func (s *RequestScope) Organization(ctx context.Context) (*models.Organization, bool) {
	m := s.Membership(ctx)
	if m == nil {
		return nil, false
	}
	return m.Organization, true
}

// Forget drops the memoized value so the next access recomputes it.
func (s *RequestScope) Forget() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.resolved = false
	s.membership = nil
	s.mu.Unlock()
}

// Resolved returns the memoized membership without triggering a lookup.
// The boolean is false when nothing has been resolved yet.
func (s *RequestScope) Resolved() (*models.Membership, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membership, s.resolved
}
