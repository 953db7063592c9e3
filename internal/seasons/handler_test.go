package seasons

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, in NewSeason) (*models.Season, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*models.Season)
	return s, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Season)
	return s, args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]*models.Season, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]*models.Season)
	return l, args.Error(1)
}

func newRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.POST("/seasons", h.Create)
	r.GET("/seasons", h.List)
	r.GET("/seasons/:id", h.GetByID)
	return r
}

func post(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/seasons", &buf)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func TestCreateSeasonParsesDates(t *testing.T) {
	store := new(mockStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(in NewSeason) bool {
		return in.Name == "Spring 2026" &&
			in.StartsOn != nil && in.StartsOn.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			in.EndsOn != nil && in.EndsOn.Equal(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC))
	})).Return(&models.Season{ID: 1, Name: "Spring 2026"}, nil).Once()

	res := post(newRouter(store), gin.H{"name": "Spring 2026", "starts_on": "2026-03-01", "ends_on": "2026-06-30"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	store.AssertExpectations(t)
}

func TestCreateSeasonRejectsBadInput(t *testing.T) {
	store := new(mockStore)
	r := newRouter(store)

	assert.Equal(t, http.StatusBadRequest, post(r, gin.H{"starts_on": "2026-03-01"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, gin.H{"name": "Fall", "starts_on": "03/01/2026"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, gin.H{"name": "Fall", "starts_on": "2026-09-01", "ends_on": "2026-08-01"}).Code)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateSeasonWithoutOrganization(t *testing.T) {
	store := new(mockStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil, tenancy.ErrNoOrganization).Once()

	res := post(newRouter(store), gin.H{"name": "Fall"})
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Contains(t, res.Body.String(), "create an organization first")
}

func TestGetSeasonNotFound(t *testing.T) {
	store := new(mockStore)
	store.On("GetByID", mock.Anything, int64(9)).Return(nil, ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/seasons/9", nil)
	res := httptest.NewRecorder()
	newRouter(store).ServeHTTP(res, req)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
