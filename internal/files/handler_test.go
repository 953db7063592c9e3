package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/leaguedesk/backend/pkg/storage"
)

type memoryObjects map[string]string

func (m memoryObjects) GetObjectStream(_ context.Context, key string) (io.ReadCloser, string, error) {
	if key == "logos/broken.png" {
		return nil, "", errors.New("s3 unavailable")
	}
	body, ok := m[key]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), "image/png", nil
}

func get(path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/storage/*key", NewHandler(memoryObjects{
		"logos/a.png":        "PNGDATA",
		"exports/roster.csv": "name\nSam",
	}, nil, "logos/").Get)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	return res
}

func TestGetStreamsObject(t *testing.T) {
	res := get("/storage/logos/a.png")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "image/png", res.Header().Get("Content-Type"))
	assert.Equal(t, "PNGDATA", res.Body.String())
	assert.Equal(t, "default-src 'none'; style-src 'unsafe-inline'; sandbox", res.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
}

func TestGetOnlyServesAllowedPrefixes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get("/storage/exports/roster.csv").Code)
	assert.Equal(t, http.StatusNotFound, get("/storage/logosx/a.png").Code)
	assert.Equal(t, http.StatusOK, get("/storage/logos/a.png").Code)
}

func TestGetMissingObject(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get("/storage/logos/missing.png").Code)
	assert.Equal(t, http.StatusNotFound, get("/storage/").Code)
}

func TestGetStorageFailure(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, get("/storage/logos/broken.png").Code)
}
