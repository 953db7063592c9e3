package organizations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
)

var fixedUUID = uuid.MustParse("6f1c2b9e-8d4a-4e0b-9c1d-2a3b4c5d6e7f")

type provisionerFixture struct {
	store   *memoryStore
	blobs   *memoryBlobs
	cleanup *recordingCleanup
	p       *Provisioner
}

func newProvisionerFixture() *provisionerFixture {
	f := &provisionerFixture{store: newMemoryStore(), blobs: newMemoryBlobs(), cleanup: &recordingCleanup{}}
	f.p = NewProvisioner(ProvisionerConfig{
		Tx:      f.store,
		Store:   f.store,
		Blobs:   f.blobs,
		Cleanup: f.cleanup,
	})
	f.p.newUUID = func() uuid.UUID { return fixedUUID }
	return f
}

func TestCreateOrganizationWithLogo(t *testing.T) {
	f := newProvisionerFixture()
	ctx := context.Background()

	org, err := f.p.CreateOrganization(ctx, 42, CreateOrganizationInput{
		Name:         "Oakdale Soccer Club",
		PrimaryColor: strPtr("#114477"),
		Logo:         pngUpload(50 * 1024),
	})
	require.NoError(t, err)

	assert.NotZero(t, org.ID)
	assert.Equal(t, fixedUUID, org.UUID)
	assert.Equal(t, "Oakdale Soccer Club", org.Name)
	assert.Equal(t, "oakdale-soccer-club", org.Slug)
	assert.EqualValues(t, 42, org.OwnerID)
	require.NotNil(t, org.PrimaryColor)
	assert.Equal(t, "#114477", *org.PrimaryColor)
	require.NotNil(t, org.LogoPath)
	assert.Equal(t, "logos/"+fixedUUID.String()+".png", *org.LogoPath)
	assert.Equal(t, []string{*org.LogoPath}, f.blobs.keys())
	assert.Equal(t, "image/png", f.blobs.types[*org.LogoPath])
	assert.Len(t, f.blobs.objects[*org.LogoPath], 50*1024)

	m, err := f.store.FirstMembership(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, org.ID, m.OrganizationID)
	assert.Equal(t, models.RoleGuardian, m.Role)
}

func TestCreateOrganizationWithoutLogo(t *testing.T) {
	f := newProvisionerFixture()

	org, err := f.p.CreateOrganization(context.Background(), 1, CreateOrganizationInput{
		Name:         "Riverside Little League",
		PrimaryColor: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "riverside-little-league", org.Slug)
	assert.Nil(t, org.LogoPath)
	assert.Nil(t, org.PrimaryColor)
	assert.Empty(t, f.blobs.keys())
}

func TestCreateOrganizationSlugFallback(t *testing.T) {
	f := newProvisionerFixture()
	org, err := f.p.CreateOrganization(context.Background(), 1, CreateOrganizationInput{Name: "!!!"})
	require.NoError(t, err)
	assert.Equal(t, "org-"+fixedUUID.String()[:8], org.Slug)
}

func TestCreateOrganizationSlugsNeedNotBeUnique(t *testing.T) {
	f := newProvisionerFixture()
	f.p.newUUID = uuid.New
	a, err := f.p.CreateOrganization(context.Background(), 1, CreateOrganizationInput{Name: "Hawks"})
	require.NoError(t, err)
	b, err := f.p.CreateOrganization(context.Background(), 2, CreateOrganizationInput{Name: "Hawks"})
	require.NoError(t, err)
	assert.Equal(t, a.Slug, b.Slug)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateOrganizationValidationWritesNothing(t *testing.T) {
	f := newProvisionerFixture()

	_, err := f.p.CreateOrganization(context.Background(), 1, CreateOrganizationInput{
		Name: "",
		Logo: &Upload{Filename: "logo.png", Size: 3000 * 1024, Content: strings.NewReader("not an image")},
	})
	require.True(t, IsValidationError(err))

	orgs, memberships := f.store.counts()
	assert.Zero(t, orgs)
	assert.Zero(t, memberships)
	assert.Empty(t, f.blobs.keys())
}

func TestCreateOrganizationStorageFailure(t *testing.T) {
	f := newProvisionerFixture()
	f.blobs.err = errors.New("bucket unreachable")

	_, err := f.p.CreateOrganization(context.Background(), 1, CreateOrganizationInput{Name: "Oakdale", Logo: pngUpload(1024)})
	require.ErrorIs(t, err, ErrStorage)
	assert.False(t, IsValidationError(err))

	orgs, memberships := f.store.counts()
	assert.Zero(t, orgs)
	assert.Zero(t, memberships)
	assert.Empty(t, f.cleanup.keys)
}

func TestCreateOrganizationRollsBackWhenMembershipFails(t *testing.T) {
	f := newProvisionerFixture()
	f.store.failAddMember = errors.New("membership insert failed")

	_, err := f.p.CreateOrganization(context.Background(), 9, CreateOrganizationInput{Name: "Oakdale", Logo: pngUpload(1024)})
	require.ErrorIs(t, err, ErrPersistence)

	orgs, memberships := f.store.counts()
	assert.Zero(t, orgs, "organization row must be rolled back")
	assert.Zero(t, memberships)

	m, err := f.store.FirstMembership(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, m)

	// The stored logo is orphaned and handed to the cleanup queue.
	assert.Equal(t, []string{"logos/" + fixedUUID.String() + ".png"}, f.cleanup.keys)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, db database.DBTX, org *models.Organization) error {
	args := m.Called(ctx, db, org)
	if args.Error(0) == nil {
		org.ID = 100
	}
	return args.Error(0)
}

func (m *mockStore) AddMember(ctx context.Context, db database.DBTX, orgID, userID int64, role models.MembershipRole) error {
	return m.Called(ctx, db, orgID, userID, role).Error(0)
}

func TestCreateOrganizationWritesInsideTransaction(t *testing.T) {
	tx := newMemoryStore()
	store := new(mockStore)
	store.On("Insert", mock.Anything, mock.Anything, mock.MatchedBy(func(o *models.Organization) bool {
		return o.Name == "Oakdale" && o.Slug == "oakdale" && o.OwnerID == 5
	})).Return(nil).Once()
	store.On("AddMember", mock.Anything, mock.Anything, int64(100), int64(5), models.RoleGuardian).Return(nil).Once()

	p := NewProvisioner(ProvisionerConfig{Tx: tx, Store: store, Blobs: newMemoryBlobs()})
	org, err := p.CreateOrganization(context.Background(), 5, CreateOrganizationInput{Name: "Oakdale"})
	require.NoError(t, err)
	assert.EqualValues(t, 100, org.ID)
	store.AssertExpectations(t)
}

func TestCreateOrganizationThenResolve(t *testing.T) {
	f := newProvisionerFixture()
	resolver := tenancy.NewResolver(f.store, nil)
	ctx := tenancy.WithScope(context.Background(), resolver.NewScope(42))

	_, ok := tenancy.CurrentOrganization(ctx)
	require.False(t, ok)

	org, err := f.p.CreateOrganization(ctx, 42, CreateOrganizationInput{Name: "Oakdale Soccer Club"})
	require.NoError(t, err)

	tenancy.ScopeFrom(ctx).Forget()
	current, ok := tenancy.CurrentOrganization(ctx)
	require.True(t, ok)
	assert.Equal(t, org.ID, current.ID)
}
