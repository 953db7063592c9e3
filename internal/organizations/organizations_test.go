package organizations

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/pkg/database"
)

// pngBytes returns a PNG signature padded to size bytes.
func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	return b
}

func pngUpload(size int) *Upload {
	data := pngBytes(size)
	return &Upload{Filename: "logo.png", Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func strPtr(s string) *string { return &s }

// memoryStore keeps organizations and memberships in memory. It implements
// Store, Directory and tenancy.MembershipReader.
type memoryStore struct {
	mu          sync.Mutex
	nextOrgID   int64
	orgs        map[int64]*models.Organization
	memberships []models.Membership
	users       map[int64]models.User

	failAddMember error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orgs: map[int64]*models.Organization{}, users: map[int64]models.User{}}
}

func (m *memoryStore) Insert(_ context.Context, _ database.DBTX, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextOrgID++
	now := time.Now().UTC()
	org.ID = m.nextOrgID
	org.CreatedAt, org.UpdatedAt = now, now
	stored := *org
	m.orgs[org.ID] = &stored
	return nil
}

func (m *memoryStore) AddMember(_ context.Context, _ database.DBTX, orgID, userID int64, role models.MembershipRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAddMember != nil {
		return m.failAddMember
	}
	for _, ms := range m.memberships {
		if ms.OrganizationID == orgID && ms.UserID == userID {
			return ErrDuplicateMembership
		}
	}
	m.memberships = append(m.memberships, models.Membership{
		OrganizationID: orgID, UserID: userID, Role: role, CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *memoryStore) FirstMembership(_ context.Context, userID int64) (*models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range m.memberships {
		if ms.UserID == userID {
			found := ms
			org := *m.orgs[ms.OrganizationID]
			found.Organization = &org
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) ListOrganizationsForUser(_ context.Context, userID int64) ([]*models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []*models.Organization{}
	for _, ms := range m.memberships {
		if ms.UserID == userID {
			org := *m.orgs[ms.OrganizationID]
			list = append(list, &org)
		}
	}
	return list, nil
}

func (m *memoryStore) ListMembers(_ context.Context, orgID int64) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []Member{}
	for _, ms := range m.memberships {
		if ms.OrganizationID == orgID {
			u := m.users[ms.UserID]
			list = append(list, Member{UserID: ms.UserID, Email: u.Email, FullName: u.FullName, Role: ms.Role, AddedAt: ms.CreatedAt})
		}
	}
	return list, nil
}

func (m *memoryStore) counts() (orgs, memberships int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orgs), len(m.memberships)
}

// InTx makes memoryStore its own Transactor: a failing fn restores the
// state it started from.
func (m *memoryStore) InTx(ctx context.Context, fn func(db database.DBTX) error) error {
	m.mu.Lock()
	nextID := m.nextOrgID
	orgs := make(map[int64]*models.Organization, len(m.orgs))
	for k, v := range m.orgs {
		orgs[k] = v
	}
	memberships := append([]models.Membership(nil), m.memberships...)
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.nextOrgID, m.orgs, m.memberships = nextID, orgs, memberships
		m.mu.Unlock()
		return err
	}
	return ctx.Err()
}

// memoryBlobs is an in-memory BlobStore.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memoryBlobs) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *memoryBlobs) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// recordingCleanup remembers enqueued cleanup keys.
type recordingCleanup struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingCleanup) EnqueueBlobCleanup(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return nil
}
