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

// CreateUGC attaches a review, comment or photo to a spot.
func CreateUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var content models.UGContent
		if err := c.ShouldBindJSON(&content); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		created, err := s.Create(c.Request.Context(), &content, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "content created"))
	}
}

// UpdateUGC edits content owned by the requester.
func UpdateUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}

		var input services.UpdateUGCInput
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}

		updated, err := s.Update(c.Request.Context(), id, input, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "content updated"))
	}
}

// DeleteUGC removes content owned by the requester.
func DeleteUGC(s *services.UGCService) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "content deleted"))
	}
}

// ListSpotUGC returns a spot's content, optionally filtered by type.
func ListSpotUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spotID, err := primitive.ObjectIDFromHex(c.Param("spotId"))
		if err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid spot id"))
			return
		}
		contents, err := s.ListBySpot(c.Request.Context(), spotID, c.Query("type"))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(contents, len(contents)))
	}
}

// ListMyUGC returns everything the authenticated user has posted.
func ListMyUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			helpers.HandleError(c, apperr.Unauthorized("authentication required"))
			return
		}
		contents, err := s.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(contents, len(contents)))
	}
}

// ListPendingUGC returns content hidden by moderation.
func ListPendingUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		contents, err := s.ListPending(c.Request.Context())
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(contents, len(contents)))
	}
}

// ModerateUGC flips content approval. Routes guard this with AdminOnly.
func ModerateUGC(s *services.UGCService) gin.HandlerFunc {
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

		updated, err := s.Moderate(c.Request.Context(), id, *input.Approved)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "moderation updated"))
	}
}

// LikeUGC toggles the requester's like on a piece of content.
func LikeUGC(s *services.UGCService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		updated, err := s.ToggleLike(c.Request.Context(), id, middleware.CurrentUser(c))
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "like updated"))
	}
}
