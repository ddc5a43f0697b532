package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/models"
)

// UGCService owns reviews, comments and photos attached to spots, plus the
// spot rating aggregate those reviews feed.
type UGCService struct {
	contents models.UGCRepo
	spots    models.SpotRepo
	cld      *cloudinary.Cloudinary
	logger   *slog.Logger
}

func NewUGCService(contents models.UGCRepo, spots models.SpotRepo, cld *cloudinary.Cloudinary, logger *slog.Logger) *UGCService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UGCService{contents: contents, spots: spots, cld: cld, logger: logger}
}

// Create attaches new content to a spot. Photos are uploaded to image hosting
// first. Reviews trigger a synchronous rating recomputation.
func (s *UGCService) Create(ctx context.Context, content *models.UGContent, author *models.User) (*models.UGContent, error) {
	if author == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	content.Sanitize()
	content.User = author.ID
	// New content lands in the moderation queue; admin posts skip it.
	content.IsApproved = author.IsAdmin()
	content.Likes = 0
	content.LikedBy = nil
	content.CreatedAt = time.Now()
	content.UpdatedAt = time.Now()

	spot, err := s.spots.GetSpotByID(ctx, content.Spot)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, apperr.NotFound("spot not found")
	}

	if content.ImageURL != "" {
		url, err := helpers.UploadImage(ctx, s.cld, content.ImageURL, helpers.UGCFolder)
		if err != nil {
			return nil, err
		}
		content.ImageURL = url
	}

	created, err := s.contents.CreateUGContent(ctx, content)
	if err != nil {
		return nil, apperr.BadRequestf("invalid content: %v", err)
	}

	if created.Type == models.UGCTypeReview {
		if err := s.recalculateRating(ctx, created.Spot); err != nil {
			return nil, err
		}
	}
	return created, nil
}

type UpdateUGCInput struct {
	Content *string  `json:"content"`
	Rating  *int     `json:"rating"`
	Tags    []string `json:"tags"`
}

// Update edits content owned by the requester (admins may edit anything).
// Changing a review's rating recomputes the spot aggregate.
func (s *UGCService) Update(ctx context.Context, id primitive.ObjectID, input UpdateUGCInput, requester *models.User) (*models.UGContent, error) {
	content, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	update := bson.M{}
	preview := *content
	if input.Content != nil {
		trimmed := helpers.StringTrim(*input.Content)
		update["content"] = trimmed
		preview.Content = trimmed
	}
	if input.Rating != nil {
		update["rating"] = *input.Rating
		preview.Rating = *input.Rating
	}
	if input.Tags != nil {
		update["tags"] = helpers.RemoveDuplicates(input.Tags)
		preview.Tags = update["tags"].([]string)
	}
	if len(update) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}

	// Check the edited document against the type rules before persisting,
	// the same way spot updates are previewed.
	if err := preview.ValidateUGContent(); err != nil {
		return nil, apperr.BadRequestf("invalid content: %v", err)
	}

	updated, err := s.contents.UpdateUGContent(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if content.Type == models.UGCTypeReview && input.Rating != nil {
		if err := s.recalculateRating(ctx, content.Spot); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes content owned by the requester (admins may delete anything).
// Deleting a review recomputes the spot aggregate; the last review resets it
// to zero.
func (s *UGCService) Delete(ctx context.Context, id primitive.ObjectID, requester *models.User) error {
	content, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := s.contents.DeleteUGContent(ctx, id); err != nil {
		return err
	}
	if content.Type == models.UGCTypeReview {
		return s.recalculateRating(ctx, content.Spot)
	}
	return nil
}

// ListBySpot returns a spot's content, optionally narrowed by type.
func (s *UGCService) ListBySpot(ctx context.Context, spotID primitive.ObjectID, contentType string) ([]*models.UGContent, error) {
	filter := bson.M{"spot": spotID, "isApproved": true}
	if contentType != "" {
		filter["type"] = contentType
	}
	return s.contents.FindUGContent(ctx, filter)
}

// ListByUser returns everything a user has posted.
func (s *UGCService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.UGContent, error) {
	return s.contents.FindUGContent(ctx, bson.M{"user": userID})
}

// ListPending returns content hidden by moderation.
func (s *UGCService) ListPending(ctx context.Context) ([]*models.UGContent, error) {
	return s.contents.FindUGContent(ctx, bson.M{"isApproved": false})
}

// Moderate flips content approval, controlling public visibility. Ratings
// are computed over every review regardless of approval, so no recompute is
// needed here.
func (s *UGCService) Moderate(ctx context.Context, id primitive.ObjectID, approved bool) (*models.UGContent, error) {
	updated, err := s.contents.UpdateUGContent(ctx, id, bson.M{"isApproved": approved})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("content not found")
	}
	return updated, nil
}

// ToggleLike likes the content, or removes the requester's like if already
// present.
func (s *UGCService) ToggleLike(ctx context.Context, id primitive.ObjectID, requester *models.User) (*models.UGContent, error) {
	if requester == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	updated, err := s.contents.ToggleLike(ctx, id, requester.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("content not found")
	}
	return updated, nil
}

func (s *UGCService) getOwned(ctx context.Context, id primitive.ObjectID, requester *models.User) (*models.UGContent, error) {
	if requester == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	content, err := s.contents.GetUGContentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, apperr.NotFound("content not found")
	}
	if !requester.IsAdmin() && content.User != requester.ID {
		return nil, apperr.Forbidden("you do not have permission to modify this content")
	}
	return content, nil
}

// recalculateRating refetches every review for the spot, moderation state
// included, and stores the arithmetic mean. A spot with no reviews resets to
// zero. The recomputation is synchronous so a subsequent read sees the new
// aggregate.
func (s *UGCService) recalculateRating(ctx context.Context, spotID primitive.ObjectID) error {
	reviews, err := s.contents.ListReviewsBySpot(ctx, spotID)
	if err != nil {
		return err
	}

	var sum int
	for _, review := range reviews {
		sum += review.Rating
	}
	average := 0.0
	if len(reviews) > 0 {
		average = float64(sum) / float64(len(reviews))
	}
	return s.spots.UpdateRating(ctx, spotID, average, len(reviews))
}
