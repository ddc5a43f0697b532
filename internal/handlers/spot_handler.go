package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/middleware"
	"github.com/musa-app/musa-api/internal/models"
	"github.com/musa-app/musa-api/internal/services"
)

func spotQueryParams(c *gin.Context) models.SpotQueryParams {
	return models.SpotQueryParams{
		Search:     c.Query("search"),
		Type:       c.Query("type"),
		Category:   c.Query("category"),
		Mood:       c.Query("mood"),
		MusicGenre: c.Query("musicGenre"),
		Lat:        c.Query("lat"),
		Lng:        c.Query("lng"),
		Distance:   c.Query("distance"),
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
		Sort:       c.Query("sort"),
	}
}

func idParam(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// SearchSpots runs the combined search over stored spots and generated
// candidates.
func SearchSpots(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := s.Search(c.Request.Context(), spotQueryParams(c), middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(results, len(results)))
	}
}

// GetSpot returns a single spot, honoring approval visibility.
func GetSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		spot, err := s.GetByID(c.Request.Context(), id, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(spot, ""))
	}
}

// CreateSpot stores a new spot for the authenticated user.
func CreateSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var spot models.Spot
		if err := c.ShouldBindJSON(&spot); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		created, err := s.Create(c.Request.Context(), &spot, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "spot created"))
	}
}

// UpdateSpot applies a partial edit by the creator or an admin.
func UpdateSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}

		var input services.UpdateSpotInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		updated, err := s.Update(c.Request.Context(), id, input, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "spot updated"))
	}
}

// DeleteSpot removes a spot by the creator or an admin.
func DeleteSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		if err := s.Delete(c.Request.Context(), id, middleware.CurrentUser(c)); err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "spot deleted"))
	}
}

// ApproveSpot flips moderation state. Routes guard this with AdminOnly.
func ApproveSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}

		input := struct {
			Approved *bool `json:"approved"`
		}{}
		if err := c.ShouldBindJSON(&input); err != nil || input.Approved == nil {
			helpers.HandleError(c, apperr.BadRequest("approved flag is required"))
			return
		}

		spot, err := s.Approve(c.Request.Context(), id, *input.Approved)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(spot, "approval updated"))
	}
}

// ListPendingSpots returns spots awaiting moderation.
func ListPendingSpots(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spots, err := s.ListPending(c.Request.Context(), spotQueryParams(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(spots, len(spots)))
	}
}

// NearbySpots returns spots around a point, generated candidates first.
func NearbySpots(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := spotQueryParams(c)
		spots, err := s.Nearby(c.Request.Context(), params.Lat, params.Lng, params.Distance, params, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(spots, len(spots)))
	}
}

// DiscoverSpots filters by mood or music genre, combining generated
// candidates with the stored catalog.
func DiscoverSpots(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spots, err := s.Discover(c.Request.Context(), spotQueryParams(c), middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(spots, len(spots)))
	}
}
