package tenancy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leaguedesk/backend/internal/models"
)

// memoryMemberships is an in-memory MembershipReader keeping insertion order.
type memoryMemberships struct {
	mu    sync.Mutex
	rows  []models.Membership
	orgs  map[int64]*models.Organization
	calls atomic.Int32
	err   error
}

func newMemoryMemberships() *memoryMemberships {
	return &memoryMemberships{orgs: map[int64]*models.Organization{}}
}

func (m *memoryMemberships) addOrg(id int64, name string) *models.Organization {
	m.mu.Lock()
	defer m.mu.Unlock()
	org := &models.Organization{ID: id, Name: name}
	m.orgs[id] = org
	return org
}

func (m *memoryMemberships) join(orgID, userID int64, role models.MembershipRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, models.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		CreatedAt:      time.Now(),
	})
}

func (m *memoryMemberships) FirstMembership(_ context.Context, userID int64) (*models.Membership, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, row := range m.rows {
		if row.UserID == userID {
			out := row
			out.Organization = m.orgs[row.OrganizationID]
			return &out, nil
		}
	}
	return nil, nil
}

var errStoreDown = errors.New("store down")
