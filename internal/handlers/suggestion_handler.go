package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/models"
	"github.com/musa-app/musa-api/internal/services"
)

// SearchSuggestions returns model-generated completions for a partial query.
func SearchSuggestions(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			helpers.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}
		if input.Limit <= 0 {
			input.Limit = 5
		}

		suggestions, err := s.Suggestions(c.Request.Context(), input.Query, input.Limit)
		if err != nil {
			helpers.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CollectionResponse(suggestions, len(suggestions)))
	}
}
