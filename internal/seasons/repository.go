package seasons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
)

// Table is the tenant-owned seasons table.
var Table = tenancy.Owned("seasons")

var columns = []string{"id", "organization_id", "name", "starts_on", "ends_on", "created_at", "updated_at"}

// ErrNotFound is returned when a season does not exist in the current organization.
var ErrNotFound = errors.New("season not found")

// NewSeason holds the fields a user may set on a season.
type NewSeason struct {
	Name     string
	StartsOn *time.Time
	EndsOn   *time.Time
}

// Repository handles season persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a season repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanSeason(row pgx.Row) (*models.Season, error) {
	var s models.Season
	if err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.StartsOn, &s.EndsOn, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a season into the current organization.
func (r *Repository) Create(ctx context.Context, in NewSeason) (*models.Season, error) {
	ins, err := Table.Insert(ctx, map[string]interface{}{
		"name":      in.Name,
		"starts_on": in.StartsOn,
		"ends_on":   in.EndsOn,
	})
	if err != nil {
		return nil, err
	}
	query, args, err := ins.Suffix(database.Returning(columns...)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	return scanSeason(r.db.QueryRow(ctx, query, args...))
}

// GetByID returns a season of the current organization.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	query, args, err := Table.Select(ctx, columns...).Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	s, err := scanSeason(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List returns the current organization's seasons, newest start first.
func (r *Repository) List(ctx context.Context) ([]*models.Season, error) {
	query, args, err := Table.Select(ctx, columns...).
		OrderBy("starts_on DESC NULLS LAST", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
