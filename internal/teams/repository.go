package teams

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/seasons"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
)

// Table is the tenant-owned teams table.
var Table = tenancy.Owned("teams")

var columns = []string{"id", "organization_id", "season_id", "name", "color", "created_at", "updated_at"}

var (
	// ErrNotFound is returned when a team does not exist in the current organization.
	ErrNotFound = errors.New("team not found")
	// ErrUnknownSeason is returned when season_id names no season of the current organization.
	ErrUnknownSeason = errors.New("season does not exist")
)

// NewTeam holds the fields a user may set on a team.
type NewTeam struct {
	Name     string
	SeasonID *int64
	Color    *string
}

// Repository handles team persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a team repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.OrganizationID, &t.SeasonID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) collect(ctx context.Context, b sq.SelectBuilder) ([]*models.Team, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Create inserts a team into the current organization. A season_id must
// belong to the same organization.
func (r *Repository) Create(ctx context.Context, in NewTeam) (*models.Team, error) {
	ins, err := Table.Insert(ctx, map[string]interface{}{
		"name":      in.Name,
		"season_id": in.SeasonID,
		"color":     in.Color,
	})
	if err != nil {
		return nil, err
	}
	if in.SeasonID != nil {
		if err := r.seasonExists(ctx, *in.SeasonID); err != nil {
			return nil, err
		}
	}
	query, args, err := ins.Suffix(database.Returning(columns...)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	return scanTeam(r.db.QueryRow(ctx, query, args...))
}

func (r *Repository) seasonExists(ctx context.Context, id int64) error {
	query, args, err := seasons.Table.Select(ctx, "1").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	var one int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnknownSeason
		}
		return err
	}
	return nil
}

// GetByID returns a team of the current organization.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query, args, err := Table.Select(ctx, columns...).Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	t, err := scanTeam(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// List returns the current organization's teams, optionally limited to one season.
func (r *Repository) List(ctx context.Context, seasonID *int64) ([]*models.Team, error) {
	b := Table.Select(ctx, columns...).OrderBy("name", "id")
	if seasonID != nil {
		b = b.Where(sq.Eq{"season_id": *seasonID})
	}
	return r.collect(ctx, b)
}

// ListAll returns teams of every organization. Platform administration only.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Team, error) {
	return r.collect(ctx, Table.Unscoped().Select(columns...).OrderBy("organization_id", "name", "id"))
}
