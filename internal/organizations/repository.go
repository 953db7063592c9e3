package organizations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/pkg/database"
)

// ErrDuplicateMembership is returned when a user is already a member of the organization.
var ErrDuplicateMembership = errors.New("membership already exists")

// ErrInvalidRole is returned for a membership role outside models.MembershipRole's values.
var ErrInvalidRole = errors.New("invalid membership role")

const orgColumns = `o.id, o.uuid, o.name, o.slug, o.owner_id, o.logo_path, o.primary_color, o.created_at, o.updated_at`

// Repository handles organization and organization_user persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates an organizations repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanOrganization(row pgx.Row, org *models.Organization) error {
	return row.Scan(&org.ID, &org.UUID, &org.Name, &org.Slug, &org.OwnerID,
		&org.LogoPath, &org.PrimaryColor, &org.CreatedAt, &org.UpdatedAt)
}

// Insert creates an organization row using db, which may be a transaction.
func (r *Repository) Insert(ctx context.Context, db database.DBTX, org *models.Organization) error {
	const q = `INSERT INTO organizations (uuid, name, slug, owner_id, logo_path, primary_color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := db.QueryRow(ctx, q, org.UUID, org.Name, org.Slug, org.OwnerID, org.LogoPath, org.PrimaryColor).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

// AddMember links userID to orgID with role using db, which may be a transaction.
func (r *Repository) AddMember(ctx context.Context, db database.DBTX, orgID, userID int64, role models.MembershipRole) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	const q = `INSERT INTO organization_user (organization_id, user_id, role) VALUES ($1, $2, $3)`
	if _, err := db.Exec(ctx, q, orgID, userID, string(role)); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// GetByUUID returns an organization by its external identifier.
func (r *Repository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := scanOrganization(r.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations o WHERE o.uuid = $1`, id), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// FirstMembership returns the user's earliest membership with its organization,
// or nil when the user has none.
func (r *Repository) FirstMembership(ctx context.Context, userID int64) (*models.Membership, error) {
	const q = `SELECT ou.organization_id, ou.user_id, ou.role, ou.created_at, ` + orgColumns + `
		FROM organization_user ou
		INNER JOIN organizations o ON o.id = ou.organization_id
		WHERE ou.user_id = $1
		ORDER BY ou.seq ASC
		LIMIT 1`
	var (
		m   models.Membership
		org models.Organization
	)
	err := r.db.QueryRow(ctx, q, userID).Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt,
		&org.ID, &org.UUID, &org.Name, &org.Slug, &org.OwnerID, &org.LogoPath, &org.PrimaryColor, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first membership: %w", err)
	}
	m.Organization = &org
	return &m, nil
}

// GetUserRole returns the user's role in the organization, or empty if not a member.
func (r *Repository) GetUserRole(ctx context.Context, orgID, userID int64) (models.MembershipRole, error) {
	const q = `SELECT role FROM organization_user WHERE organization_id = $1 AND user_id = $2`
	var role string
	err := r.db.QueryRow(ctx, q, orgID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return models.MembershipRole(role), nil
}

// ListOrganizationsForUser returns organizations the user is a member of, in membership order.
func (r *Repository) ListOrganizationsForUser(ctx context.Context, userID int64) ([]*models.Organization, error) {
	q := `SELECT ` + orgColumns + `
		FROM organizations o
		INNER JOIN organization_user ou ON ou.organization_id = o.id
		WHERE ou.user_id = $1
		ORDER BY ou.seq ASC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := scanOrganization(rows, &o); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// Member is an organization member with user details.
type Member struct {
	UserID   int64                 `json:"user_id"`
	Email    string                `json:"email"`
	FullName string                `json:"full_name"`
	Role     models.MembershipRole `json:"role"`
	AddedAt  time.Time             `json:"added_at"`
}

// ListMembers returns members of an organization (join organization_user + users).
func (r *Repository) ListMembers(ctx context.Context, orgID int64) ([]Member, error) {
	const q = `SELECT ou.user_id, u.email, u.full_name, ou.role, ou.created_at
		FROM organization_user ou
		INNER JOIN users u ON u.id = ou.user_id
		WHERE ou.organization_id = $1
		ORDER BY ou.seq ASC`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
