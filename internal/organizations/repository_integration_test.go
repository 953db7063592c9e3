//go:build integration

package organizations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
	"github.com/leaguedesk/backend/pkg/database/dbtest"
)

// failingMembers breaks the second write of provisioning.
type failingMembers struct {
	*Repository
}

func (failingMembers) AddMember(context.Context, database.DBTX, int64, int64, models.MembershipRole) error {
	return errors.New("membership write failed")
}

func countRows(t *testing.T, db database.DBTX, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestRepositoryProvisioning(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	repo := NewRepository(pool)
	tx := database.NewTransactor(pool)
	owner := dbtest.CreateUser(t, pool, "owner@oakdale.test", false)

	t.Run("rolls back organization when membership fails", func(t *testing.T) {
		p := NewProvisioner(ProvisionerConfig{Tx: tx, Store: failingMembers{repo}, Blobs: newMemoryBlobs()})
		_, err := p.CreateOrganization(ctx, owner, CreateOrganizationInput{Name: "Oakdale Soccer Club"})
		require.ErrorIs(t, err, ErrPersistence)
		assert.Zero(t, countRows(t, pool, "organizations"))
		assert.Zero(t, countRows(t, pool, "organization_user"))

		m, err := repo.FirstMembership(ctx, owner)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("creates organization and guardian membership", func(t *testing.T) {
		p := NewProvisioner(ProvisionerConfig{Tx: tx, Store: repo, Blobs: newMemoryBlobs()})
		org, err := p.CreateOrganization(ctx, owner, CreateOrganizationInput{
			Name: "Oakdale Soccer Club", PrimaryColor: strPtr("#114477"), Logo: pngUpload(50 * 1024),
		})
		require.NoError(t, err)

		stored, err := repo.GetByUUID(ctx, org.UUID)
		require.NoError(t, err)
		assert.Equal(t, org.ID, stored.ID)
		assert.Equal(t, "oakdale-soccer-club", stored.Slug)
		assert.Equal(t, "#114477", *stored.PrimaryColor)
		assert.Equal(t, *org.LogoPath, *stored.LogoPath)

		role, err := repo.GetUserRole(ctx, org.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, models.RoleGuardian, role)

		resolver := tenancy.NewResolver(repo, nil)
		current := resolver.Resolve(ctx, owner)
		require.NotNil(t, current)
		assert.Equal(t, org.ID, current.Organization.ID)
	})
}

func TestRepositoryFirstMembershipWins(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	repo := NewRepository(pool)
	tx := database.NewTransactor(pool)

	alice := dbtest.CreateUser(t, pool, "alice@example.test", false)
	bob := dbtest.CreateUser(t, pool, "bob@example.test", false)
	p := NewProvisioner(ProvisionerConfig{Tx: tx, Store: repo, Blobs: newMemoryBlobs()})

	first, err := p.CreateOrganization(ctx, alice, CreateOrganizationInput{Name: "First League"})
	require.NoError(t, err)
	second, err := p.CreateOrganization(ctx, bob, CreateOrganizationInput{Name: "Second League"})
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(ctx, pool, second.ID, alice, models.RoleAdmin))

	m, err := repo.FirstMembership(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, first.ID, m.OrganizationID)
	assert.Equal(t, "First League", m.Organization.Name)

	orgs, err := repo.ListOrganizationsForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, first.ID, orgs[0].ID)
	assert.Equal(t, second.ID, orgs[1].ID)

	members, err := repo.ListMembers(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, bob, members[0].UserID)
	assert.Equal(t, models.RoleAdmin, members[1].Role)

	err = repo.AddMember(ctx, pool, second.ID, alice, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrDuplicateMembership)
}
