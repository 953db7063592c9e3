package teams

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

// CreateTeamRequest is the body for POST /teams.
type CreateTeamRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	SeasonID *int64  `json:"season_id" binding:"omitempty,gt=0"`
	Color    *string `json:"color" binding:"omitempty,max=32"`
}

// Store is the team store used by Handler.
type Store interface {
	Create(ctx context.Context, in NewTeam) (*models.Team, error)
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	List(ctx context.Context, seasonID *int64) ([]*models.Team, error)
	ListAll(ctx context.Context) ([]*models.Team, error)
}

// Handler handles team HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a teams handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /teams.
func (h *Handler) Create(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := NewTeam{Name: strings.TrimSpace(req.Name), SeasonID: req.SeasonID}
	if req.Color != nil && strings.TrimSpace(*req.Color) != "" {
		color := strings.TrimSpace(*req.Color)
		in.Color = &color
	}

	team, err := h.repo.Create(c.Request.Context(), in)
	switch {
	case err == nil:
		response.Created(c, team, "")
	case errors.Is(err, tenancy.ErrNoOrganization):
		response.Conflict(c, middleware.NoOrganizationMessage)
	case errors.Is(err, ErrUnknownSeason):
		response.ValidationFailed(c, map[string][]string{"season_id": {"The selected season id is invalid."}}, nil)
	default:
		h.logger.Error("create team", zap.Error(err))
		response.Internal(c, "failed to create team")
	}
}

// GetByID handles GET /teams/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	team, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "team not found")
			return
		}
		h.logger.Error("get team", zap.Int64("team_id", id), zap.Error(err))
		response.Internal(c, "failed to load team")
		return
	}
	response.OK(c, team)
}

// List handles GET /teams. Optional query: season_id.
func (h *Handler) List(c *gin.Context) {
	var seasonID *int64
	if raw := c.Query("season_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid season_id")
			return
		}
		seasonID = &id
	}
	list, err := h.repo.List(c.Request.Context(), seasonID)
	if err != nil {
		h.logger.Error("list teams", zap.Error(err))
		response.Internal(c, "failed to load teams")
		return
	}
	respondList(c, list)
}

// ListAll handles GET /admin/teams. Teams of every organization.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list all teams", zap.Error(err))
		response.Internal(c, "failed to load teams")
		return
	}
	respondList(c, list)
}

func respondList(c *gin.Context, list []*models.Team) {
	if list == nil {
		list = []*models.Team{}
	}
	response.OK(c, list)
}
