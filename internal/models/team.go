package models

import "time"

// Team is a tenant-owned team, optionally attached to a season.
type Team struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	SeasonID       *int64    `json:"season_id,omitempty"`
	Name           string    `json:"name"`
	Color          *string   `json:"color,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
