package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/models"
)

const testSecret = "test-secret"

type stubUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (s *stubUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) GetUserByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetUserByGoogleID(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetUserByConfirmationToken(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetUserByResetToken(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) UpdateUser(_ context.Context, id primitive.ObjectID, _ bson.M) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) UnsetUserFields(_ context.Context, _ primitive.ObjectID, _ ...string) error {
	return nil
}

func setupAuthRouter(repo *stubUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	whoami := func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID.Hex(), "role": user.Role})
	}

	router.GET("/private", Auth(testSecret, repo), whoami)
	router.GET("/optional", OptionalAuth(testSecret, repo), whoami)
	router.GET("/admin", Auth(testSecret, repo), AdminOnly(), whoami)
	return router
}

func seedUser(repo *stubUserRepo, role string) (*models.User, string) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "u", Email: "u@example.com", Role: role}
	repo.users[user.ID] = user
	token, err := helpers.SignToken(testSecret, user.ID.Hex(), role)
	if err != nil {
		panic(err)
	}
	return user, token
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingToken(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", "").Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", "garbage").Code)
}

func TestAuthRejectsTokenForDeletedUser(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	user, token := seedUser(repo, models.RoleUser)
	delete(repo.users, user.ID)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", token).Code)
}

func TestAuthLoadsUser(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	user, token := seedUser(repo, models.RoleUser)

	w := get(router, "/private", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.Hex())
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	w := get(router, "/optional", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")
}

func TestOptionalAuthLoadsUserWhenPresent(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	user, token := seedUser(repo, models.RoleUser)

	w := get(router, "/optional", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.Hex())
}

func TestAdminOnly(t *testing.T) {
	repo := &stubUserRepo{users: map[primitive.ObjectID]*models.User{}}
	router := setupAuthRouter(repo)

	_, userToken := seedUser(repo, models.RoleUser)
	assert.Equal(t, http.StatusForbidden, get(router, "/admin", userToken).Code)

	_, adminToken := seedUser(repo, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, get(router, "/admin", adminToken).Code)
}
