package models

import "time"

// Season is a tenant-owned playing season.
type Season struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Name           string     `json:"name"`
	StartsOn       *time.Time `json:"starts_on,omitempty"`
	EndsOn         *time.Time `json:"ends_on,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
