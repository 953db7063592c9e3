package models

import "time"

// Player is a tenant-owned roster entry.
type Player struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	TeamID         *int64     `json:"team_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	JerseyNumber   *int       `json:"jersey_number,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
