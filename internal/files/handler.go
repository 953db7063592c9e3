package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/pkg/response"
	"github.com/leaguedesk/backend/pkg/storage"
)

// ObjectReader streams stored objects.
type ObjectReader interface {
	GetObjectStream(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// contentSecurityPolicy keeps served blobs (SVG in particular) from running
// scripts or loading anything on the API origin.
const contentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; sandbox"

// Handler serves public blobs such as organization logos.
type Handler struct {
	objects  ObjectReader
	prefixes []string
	logger   *zap.Logger
}

// NewHandler creates a files handler that serves only keys under one of
// prefixes, e.g. "logos/".
func NewHandler(objects ObjectReader, logger *zap.Logger, prefixes ...string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{objects: objects, prefixes: prefixes, logger: logger}
}

func (h *Handler) public(key string) bool {
	for _, p := range h.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Get handles GET /storage/*key.
func (h *Handler) Get(c *gin.Context) {
	key, err := storage.CleanKey(c.Param("key"))
	if err != nil || !h.public(key) {
		response.NotFound(c, "file not found")
		return
	}
	body, contentType, err := h.objects.GetObjectStream(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(c, "file not found")
			return
		}
		h.logger.Error("get object", zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to load file")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", contentSecurityPolicy)
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
