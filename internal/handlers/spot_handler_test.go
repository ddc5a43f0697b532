package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/musa-app/musa-api/internal/middleware"
	"github.com/musa-app/musa-api/internal/models"
	"github.com/musa-app/musa-api/internal/services"
)

type stubSpotRepo struct {
	spots map[primitive.ObjectID]*models.Spot
}

func (s *stubSpotRepo) CreateSpot(_ context.Context, spot *models.Spot) (*models.Spot, error) {
	_ = spot.BeforeCreate()
	s.spots[spot.ID] = spot
	return spot, nil
}

func (s *stubSpotRepo) GetSpotByID(_ context.Context, id primitive.ObjectID) (*models.Spot, error) {
	return s.spots[id], nil
}

func (s *stubSpotRepo) FindSpots(_ context.Context, filter bson.M, _ *options.FindOptions) ([]*models.Spot, error) {
	out := []*models.Spot{}
	for _, spot := range s.spots {
		if approved, ok := filter["isApproved"].(bool); ok && spot.IsApproved != approved {
			continue
		}
		out = append(out, spot)
	}
	return out, nil
}

func (s *stubSpotRepo) UpdateSpot(_ context.Context, id primitive.ObjectID, update bson.M) (*models.Spot, error) {
	spot, ok := s.spots[id]
	if !ok {
		return nil, nil
	}
	if approved, ok := update["isApproved"].(bool); ok {
		spot.IsApproved = approved
	}
	return spot, nil
}

func (s *stubSpotRepo) DeleteSpot(_ context.Context, id primitive.ObjectID) error {
	delete(s.spots, id)
	return nil
}

func (s *stubSpotRepo) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Spot, error) {
	return s.UpdateSpot(ctx, id, bson.M{"isApproved": approved})
}

func (s *stubSpotRepo) UpdateRating(_ context.Context, _ primitive.ObjectID, _ float64, _ int) error {
	return nil
}

func setupSpotRouter(repo *stubSpotRepo, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewSpotService(repo, nil, nil, nil)

	router := gin.New()
	inject := func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.UserKey, user)
		}
		c.Next()
	}
	router.GET("/api/spots", inject, SearchSpots(svc))
	router.GET("/api/spots/nearby", inject, NearbySpots(svc))
	router.GET("/api/spots/:id", inject, GetSpot(svc))
	return router
}

func seedSpot(repo *stubSpotRepo, approved bool) *models.Spot {
	spot := &models.Spot{
		ID:          primitive.NewObjectID(),
		Name:        "Gallery",
		Description: "a gallery",
		Type:        models.SpotTypeVenue,
		Category:    "painting",
		Location:    models.Location{Type: "Point", Coordinates: []float64{2.35, 48.86}},
		Creator:     primitive.NewObjectID(),
		IsApproved:  approved,
		Source:      models.SourceDatabase,
	}
	repo.spots[spot.ID] = spot
	return spot
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetSpotUnapprovedForbiddenForAnonymous(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	spot := seedSpot(repo, false)

	router := setupSpotRouter(repo, nil)
	w := doRequest(router, http.MethodGet, "/api/spots/"+spot.ID.Hex())

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestGetSpotUnapprovedVisibleToAdmin(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	spot := seedSpot(repo, false)

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	router := setupSpotRouter(repo, admin)
	w := doRequest(router, http.MethodGet, "/api/spots/"+spot.ID.Hex())

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool        `json:"success"`
		Data    models.Spot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, spot.ID, body.Data.ID)
}

func TestGetSpotInvalidID(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	router := setupSpotRouter(repo, nil)

	w := doRequest(router, http.MethodGet, "/api/spots/not-an-id")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSpotNotFound(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	router := setupSpotRouter(repo, nil)

	w := doRequest(router, http.MethodGet, "/api/spots/"+primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchSpotsEnvelopeCarriesZeroCount(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	router := setupSpotRouter(repo, nil)

	w := doRequest(router, http.MethodGet, "/api/spots")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	count, present := body["count"]
	require.True(t, present, "count must serialize even when zero")
	assert.Equal(t, float64(0), count)
}

func TestNearbySpotsRequiresCoordinates(t *testing.T) {
	repo := &stubSpotRepo{spots: map[primitive.ObjectID]*models.Spot{}}
	router := setupSpotRouter(repo, nil)

	w := doRequest(router, http.MethodGet, "/api/spots/nearby?lat=48.86")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
