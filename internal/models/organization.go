package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant: the unit of data isolation.
type Organization struct {
	ID           int64     `json:"id"`
	UUID         uuid.UUID `json:"uuid"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	OwnerID      int64     `json:"owner_id"`
	LogoPath     *string   `json:"logo_path"`
	PrimaryColor *string   `json:"primary_color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MembershipRole is the role a user holds within an organization.
type MembershipRole string

const (
	// RoleGuardian is assigned to the creator of an organization.
	RoleGuardian MembershipRole = "guardian"
	RoleAdmin    MembershipRole = "admin"
)

// Valid reports whether r is a known membership role.
func (r MembershipRole) Valid() bool {
	return r == RoleGuardian || r == RoleAdmin
}

// Membership links a user to an organization with a role.
// At most one row exists per (organization, user) pair.
type Membership struct {
	OrganizationID int64          `json:"organization_id"`
	UserID         int64          `json:"user_id"`
	Role           MembershipRole `json:"role"`
	CreatedAt      time.Time      `json:"created_at"`
	Organization   *Organization  `json:"organization,omitempty"`
}
