package players

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/middleware"
	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/response"
)

// CreatePlayerRequest is the body for POST /players.
type CreatePlayerRequest struct {
	TeamID       *int64  `json:"team_id" binding:"omitempty,gt=0"`
	FirstName    string  `json:"first_name" binding:"required,max=255"`
	LastName     string  `json:"last_name" binding:"required,max=255"`
	JerseyNumber *int    `json:"jersey_number" binding:"omitempty,min=0,max=999"`
	BirthDate    *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
}

// Store is the player store used by Handler.
type Store interface {
	Create(ctx context.Context, in NewPlayer) (*models.Player, error)
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	List(ctx context.Context, teamID *int64) ([]*models.Player, error)
}

// Handler handles player HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a players handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /players.
func (h *Handler) Create(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	birthDate, err := models.ParseDate(req.BirthDate)
	if err != nil {
		response.BadRequest(c, "invalid birth_date")
		return
	}

	player, err := h.repo.Create(c.Request.Context(), NewPlayer{
		TeamID:       req.TeamID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		JerseyNumber: req.JerseyNumber,
		BirthDate:    birthDate,
	})
	switch {
	case err == nil:
		response.Created(c, player, "")
	case errors.Is(err, tenancy.ErrNoOrganization):
		response.Conflict(c, middleware.NoOrganizationMessage)
	case errors.Is(err, ErrUnknownTeam):
		response.ValidationFailed(c, map[string][]string{"team_id": {"The selected team id is invalid."}}, nil)
	default:
		h.logger.Error("create player", zap.Error(err))
		response.Internal(c, "failed to create player")
	}
}

// GetByID handles GET /players/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid player id")
		return
	}
	player, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "player not found")
			return
		}
		h.logger.Error("get player", zap.Int64("player_id", id), zap.Error(err))
		response.Internal(c, "failed to load player")
		return
	}
	response.OK(c, player)
}

// List handles GET /players. Optional query: team_id.
func (h *Handler) List(c *gin.Context) {
	var teamID *int64
	if raw := c.Query("team_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid team_id")
			return
		}
		teamID = &id
	}
	list, err := h.repo.List(c.Request.Context(), teamID)
	if err != nil {
		h.logger.Error("list players", zap.Error(err))
		response.Internal(c, "failed to load players")
		return
	}
	if list == nil {
		list = []*models.Player{}
	}
	response.OK(c, list)
}
