package players

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/teams"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
)

// Table is the tenant-owned players table.
var Table = tenancy.Owned("players")

var columns = []string{
	"id", "organization_id", "team_id", "first_name", "last_name",
	"jersey_number", "birth_date", "created_at", "updated_at",
}

var (
	// ErrNotFound is returned when a player does not exist in the current organization.
	ErrNotFound = errors.New("player not found")
	// ErrUnknownTeam is returned when team_id names no team of the current organization.
	ErrUnknownTeam = errors.New("team does not exist")
)

// NewPlayer holds the fields a user may set on a player.
type NewPlayer struct {
	TeamID       *int64
	FirstName    string
	LastName     string
	JerseyNumber *int
	BirthDate    *time.Time
}

// Repository handles player persistence.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a player repository.
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.OrganizationID, &p.TeamID, &p.FirstName, &p.LastName,
		&p.JerseyNumber, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a player into the current organization. A team_id must
// belong to the same organization.
func (r *Repository) Create(ctx context.Context, in NewPlayer) (*models.Player, error) {
	ins, err := Table.Insert(ctx, map[string]interface{}{
		"team_id":       in.TeamID,
		"first_name":    in.FirstName,
		"last_name":     in.LastName,
		"jersey_number": in.JerseyNumber,
		"birth_date":    in.BirthDate,
	})
	if err != nil {
		return nil, err
	}
	if in.TeamID != nil {
		if _, err := teams.NewRepository(r.db).GetByID(ctx, *in.TeamID); err != nil {
			if errors.Is(err, teams.ErrNotFound) {
				return nil, ErrUnknownTeam
			}
			return nil, err
		}
	}
	query, args, err := ins.Suffix(database.Returning(columns...)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	return scanPlayer(r.db.QueryRow(ctx, query, args...))
}

// GetByID returns a player of the current organization.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	query, args, err := Table.Select(ctx, columns...).Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	p, err := scanPlayer(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns the current organization's players, optionally limited to one team.
func (r *Repository) List(ctx context.Context, teamID *int64) ([]*models.Player, error) {
	b := Table.Select(ctx, columns...).OrderBy("last_name", "first_name", "id")
	if teamID != nil {
		b = b.Where(sq.Eq{"team_id": *teamID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
