package organizations

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/middleware"
	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/response"
)

// CreatedMessage is shown to the user after provisioning succeeds.
const CreatedMessage = "Organization created."

// Creator provisions organizations.
type Creator interface {
	CreateOrganization(ctx context.Context, ownerID int64, in CreateOrganizationInput) (*models.Organization, error)
}

// Directory lists organizations and their members.
type Directory interface {
	ListOrganizationsForUser(ctx context.Context, userID int64) ([]*models.Organization, error)
	ListMembers(ctx context.Context, orgID int64) ([]Member, error)
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo    Directory
	creator Creator
	logger  *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo Directory, creator Creator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, creator: creator, logger: logger}
}

// CreateOrganization handles POST /organizations (multipart: name, logo, primary_color).
// Creates the org and makes the current user its guardian.
func (h *Handler) CreateOrganization(c *gin.Context) {
	userID := middleware.UserID(c)
	in := CreateOrganizationInput{Name: c.PostForm("name")}
	if color, ok := c.GetPostForm("primary_color"); ok {
		in.PrimaryColor = &color
	}

	fh, err := c.FormFile("logo")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, "could not read uploaded logo")
			return
		}
		defer f.Close()
		in.Logo = &Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.BadRequest(c, "invalid multipart form")
		return
	}

	org, err := h.creator.CreateOrganization(c.Request.Context(), userID, in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(c, verr.Fields, in.Old())
			return
		}
		response.Internal(c, "failed to create organization, please try again")
		return
	}

	tenancy.ScopeFrom(c.Request.Context()).Forget()
	response.Created(c, org, CreatedMessage)
}

// Current handles GET /organizations/current.
func (h *Handler) Current(c *gin.Context) {
	org, ok := tenancy.CurrentOrganization(c.Request.Context())
	if !ok {
		response.NotFound(c, "you do not belong to an organization yet, create one to get started")
		return
	}
	response.OK(c, org)
}

// ListMyOrganizations handles GET /organizations. Returns orgs the current user is a member of.
func (h *Handler) ListMyOrganizations(c *gin.Context) {
	orgs, err := h.repo.ListOrganizationsForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("list organizations", zap.Error(err))
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// ListMembers handles GET /organizations/current/members.
func (h *Handler) ListMembers(c *gin.Context) {
	org, ok := tenancy.CurrentOrganization(c.Request.Context())
	if !ok {
		response.NotFound(c, "no current organization")
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), org.ID)
	if err != nil {
		h.logger.Error("list members", zap.Int64("organization_id", org.ID), zap.Error(err))
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}
