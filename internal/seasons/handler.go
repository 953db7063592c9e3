package seasons

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

// CreateSeasonRequest is the body for POST /seasons.
type CreateSeasonRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	StartsOn *string `json:"starts_on" binding:"omitempty,datetime=2006-01-02"`
	EndsOn   *string `json:"ends_on" binding:"omitempty,datetime=2006-01-02"`
}

// Store is the season store used by Handler.
type Store interface {
	Create(ctx context.Context, in NewSeason) (*models.Season, error)
	GetByID(ctx context.Context, id int64) (*models.Season, error)
	List(ctx context.Context) ([]*models.Season, error)
}

// Handler handles season HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a seasons handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /seasons.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startsOn, err := models.ParseDate(req.StartsOn)
	if err != nil {
		response.BadRequest(c, "invalid starts_on")
		return
	}
	endsOn, err := models.ParseDate(req.EndsOn)
	if err != nil {
		response.BadRequest(c, "invalid ends_on")
		return
	}
	if startsOn != nil && endsOn != nil && endsOn.Before(*startsOn) {
		response.BadRequest(c, "ends_on must not be before starts_on")
		return
	}

	season, err := h.repo.Create(c.Request.Context(), NewSeason{
		Name:     strings.TrimSpace(req.Name),
		StartsOn: startsOn,
		EndsOn:   endsOn,
	})
	if err != nil {
		if errors.Is(err, tenancy.ErrNoOrganization) {
			response.Conflict(c, middleware.NoOrganizationMessage)
			return
		}
		h.logger.Error("create season", zap.Error(err))
		response.Internal(c, "failed to create season")
		return
	}
	response.Created(c, season, "")
}

// GetByID handles GET /seasons/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid season id")
		return
	}
	season, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "season not found")
			return
		}
		h.logger.Error("get season", zap.Int64("season_id", id), zap.Error(err))
		response.Internal(c, "failed to load season")
		return
	}
	response.OK(c, season)
}

// List handles GET /seasons.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list seasons", zap.Error(err))
		response.Internal(c, "failed to load seasons")
		return
	}
	if list == nil {
		list = []*models.Season{}
	}
	response.OK(c, list)
}
