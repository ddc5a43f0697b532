package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/ai"
	"github.com/musa-app/musa-api/internal/apperr"
	"github.com/musa-app/musa-api/internal/helpers"
	"github.com/musa-app/musa-api/internal/models"
)

// DefaultNearbyDistanceKm bounds the nearby search when the client sends no
// radius.
const DefaultNearbyDistanceKm = 5.0

// SpotService owns spot discovery and lifecycle. Search results interleave
// stored spots with ephemeral candidates from the generator when one is
// configured.
type SpotService struct {
	spots  models.SpotRepo
	gen    *ai.SpotGenerator
	cld    *cloudinary.Cloudinary
	logger *slog.Logger
}

func NewSpotService(spots models.SpotRepo, gen *ai.SpotGenerator, cld *cloudinary.Cloudinary, logger *slog.Logger) *SpotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpotService{spots: spots, gen: gen, cld: cld, logger: logger}
}

// Search runs the combined query: the database is filtered by the params and
// the generator contributes candidates for the same constraints. Generator
// output leads the result list.
func (s *SpotService) Search(ctx context.Context, params models.SpotQueryParams, requester *models.User) ([]any, error) {
	filter := models.BuildSpotFilter(params, requester, s.logger)
	opts := models.BuildFindOptions(params)

	stored, err := s.spots.FindSpots(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	generated := []ai.GeneratedSpot{}
	if s.gen != nil {
		generated = s.gen.GenerateSpots(ctx, generateParamsFrom(params))
	}

	return CombineResults(generated, stored), nil
}

func generateParamsFrom(params models.SpotQueryParams) ai.GenerateParams {
	gp := ai.GenerateParams{
		Query:      params.Search,
		Mood:       params.Mood,
		MusicGenre: params.MusicGenre,
	}
	lat, latErr := strconv.ParseFloat(params.Lat, 64)
	lng, lngErr := strconv.ParseFloat(params.Lng, 64)
	if latErr == nil && lngErr == nil {
		gp.Lat, gp.Lng = lat, lng
		gp.Distance = DefaultNearbyDistanceKm
		if d, err := strconv.ParseFloat(params.Distance, 64); err == nil && d > 0 {
			gp.Distance = d
		}
		gp.HasGeo = true
	}
	return gp
}

// GetByID returns a spot respecting approval visibility: unapproved spots are
// only visible to admins and their creator.
func (s *SpotService) GetByID(ctx context.Context, id primitive.ObjectID, requester *models.User) (*models.Spot, error) {
	spot, err := s.spots.GetSpotByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, apperr.NotFound("spot not found")
	}
	if !spot.IsApproved && !canManageSpot(spot, requester) {
		return nil, apperr.Forbidden("this spot is pending approval")
	}
	return spot, nil
}

// Create stores a new spot. Spots created by admins are approved immediately;
// everyone else goes through moderation.
func (s *SpotService) Create(ctx context.Context, spot *models.Spot, creator *models.User) (*models.Spot, error) {
	if creator == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	spot.Sanitize()
	spot.Creator = creator.ID
	spot.IsApproved = creator.IsAdmin()
	spot.Source = models.SourceDatabase
	spot.Rating = models.Rating{}
	spot.CreatedAt = time.Now()
	spot.UpdatedAt = time.Now()

	if err := spot.ValidateSpot(); err != nil {
		return nil, apperr.BadRequestf("invalid spot: %v", err)
	}

	for i := range spot.Images {
		url, err := helpers.UploadImage(ctx, s.cld, spot.Images[i].URL, helpers.SpotFolder)
		if err != nil {
			return nil, err
		}
		spot.Images[i].URL = url
	}

	return s.spots.CreateSpot(ctx, spot)
}

// UpdateSpotInput lists the client-editable fields. Approval, rating and
// provenance are managed server side and cannot be set here.
type UpdateSpotInput struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Type        *string             `json:"type"`
	Category    *string             `json:"category"`
	Mood        []string            `json:"mood"`
	MusicGenres []string            `json:"musicGenres"`
	Tags        []string            `json:"tags"`
	Location    *models.Location    `json:"location"`
	Images      []models.SpotImage  `json:"images"`
	DateRange   *models.DateRange   `json:"dateRange"`
	ContactInfo *models.ContactInfo `json:"contactInfo"`
}

// Update applies a partial edit. Only the creator or an admin may edit.
func (s *SpotService) Update(ctx context.Context, id primitive.ObjectID, input UpdateSpotInput, requester *models.User) (*models.Spot, error) {
	spot, err := s.spots.GetSpotByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, apperr.NotFound("spot not found")
	}
	if !canManageSpot(spot, requester) {
		return nil, apperr.Forbidden("you do not have permission to edit this spot")
	}

	update := bson.M{}
	if input.Name != nil {
		update["name"] = helpers.StringTrim(*input.Name)
	}
	if input.Description != nil {
		update["description"] = helpers.StringTrim(*input.Description)
	}
	if input.Type != nil {
		update["type"] = *input.Type
	}
	if input.Category != nil {
		update["category"] = *input.Category
	}
	if input.Mood != nil {
		update["mood"] = helpers.RemoveDuplicates(input.Mood)
	}
	if input.MusicGenres != nil {
		update["musicGenres"] = helpers.RemoveDuplicates(input.MusicGenres)
	}
	if input.Tags != nil {
		update["tags"] = helpers.RemoveDuplicates(input.Tags)
	}
	if input.Location != nil {
		update["location"] = *input.Location
	}
	if input.DateRange != nil {
		update["dateRange"] = *input.DateRange
	}
	if input.ContactInfo != nil {
		update["contactInfo"] = *input.ContactInfo
	}
	if input.Images != nil {
		for i := range input.Images {
			url, err := helpers.UploadImage(ctx, s.cld, input.Images[i].URL, helpers.SpotFolder)
			if err != nil {
				return nil, err
			}
			input.Images[i].URL = url
		}
		update["images"] = input.Images
	}
	if len(update) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}

	preview := *spot
	applyUpdatePreview(&preview, update)
	if err := preview.ValidateSpot(); err != nil {
		return nil, apperr.BadRequestf("invalid spot: %v", err)
	}

	return s.spots.UpdateSpot(ctx, id, update)
}

// applyUpdatePreview projects a partial update onto a copy of the spot so
// enum and coordinate rules can be checked before touching the database.
func applyUpdatePreview(spot *models.Spot, update bson.M) {
	if v, ok := update["name"].(string); ok {
		spot.Name = v
	}
	if v, ok := update["description"].(string); ok {
		spot.Description = v
	}
	if v, ok := update["type"].(string); ok {
		spot.Type = v
	}
	if v, ok := update["category"].(string); ok {
		spot.Category = v
	}
	if v, ok := update["mood"].([]string); ok {
		spot.Mood = v
	}
	if v, ok := update["musicGenres"].([]string); ok {
		spot.MusicGenres = v
	}
	if v, ok := update["location"].(models.Location); ok {
		spot.Location = v
	}
}

// Delete removes a spot. Only the creator or an admin may delete.
func (s *SpotService) Delete(ctx context.Context, id primitive.ObjectID, requester *models.User) error {
	spot, err := s.spots.GetSpotByID(ctx, id)
	if err != nil {
		return err
	}
	if spot == nil {
		return apperr.NotFound("spot not found")
	}
	if !canManageSpot(spot, requester) {
		return apperr.Forbidden("you do not have permission to delete this spot")
	}
	return s.spots.DeleteSpot(ctx, id)
}

// Approve flips moderation state. Admin-only enforcement happens at the
// route level.
func (s *SpotService) Approve(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Spot, error) {
	spot, err := s.spots.SetApproval(ctx, id, approved)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, apperr.NotFound("spot not found")
	}
	return spot, nil
}

// ListPending returns spots awaiting moderation, newest first.
func (s *SpotService) ListPending(ctx context.Context, params models.SpotQueryParams) ([]*models.Spot, error) {
	return s.spots.FindSpots(ctx, bson.M{"isApproved": false}, models.BuildFindOptions(params))
}

// Nearby returns spots within distance km of the given point, generated
// candidates for the same area first. Latitude and longitude are required;
// the radius defaults when absent.
func (s *SpotService) Nearby(ctx context.Context, latRaw, lngRaw, distRaw string, params models.SpotQueryParams, requester *models.User) ([]any, error) {
	if latRaw == "" || lngRaw == "" {
		return nil, apperr.BadRequest("lat and lng are required")
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		return nil, apperr.BadRequest("lat and lng must be valid numbers")
	}

	distance := DefaultNearbyDistanceKm
	if distRaw != "" {
		if d, err := strconv.ParseFloat(distRaw, 64); err == nil && d > 0 {
			distance = d
		}
	}

	filter := bson.M{"location.coordinates": models.CenterSphereFilter(lat, lng, distance)}
	if requester == nil || !requester.IsAdmin() {
		filter["isApproved"] = true
	}
	stored, err := s.spots.FindSpots(ctx, filter, models.BuildFindOptions(params))
	if err != nil {
		return nil, err
	}

	generated := []ai.GeneratedSpot{}
	if s.gen != nil {
		generated = s.gen.GenerateSpots(ctx, ai.GenerateParams{
			Lat:      lat,
			Lng:      lng,
			Distance: distance,
			HasGeo:   true,
		})
	}
	return CombineResults(generated, stored), nil
}

// Discover filters by mood or music genre, with generated candidates for the
// same constraints leading the results. At least one filter is required.
func (s *SpotService) Discover(ctx context.Context, params models.SpotQueryParams, requester *models.User) ([]any, error) {
	if params.Mood == "" && params.MusicGenre == "" {
		return nil, apperr.BadRequest("mood or musicGenre is required")
	}
	filter := models.BuildSpotFilter(params, requester, s.logger)
	stored, err := s.spots.FindSpots(ctx, filter, models.BuildFindOptions(params))
	if err != nil {
		return nil, err
	}

	generated := []ai.GeneratedSpot{}
	if s.gen != nil {
		generated = s.gen.GenerateSpots(ctx, generateParamsFrom(params))
	}
	return CombineResults(generated, stored), nil
}

// Suggestions asks the generator for search completions. Queries shorter than
// two characters are rejected before spending a model call.
func (s *SpotService) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	if len(helpers.StringTrim(query)) < 2 {
		return nil, apperr.BadRequest("query must be at least 2 characters")
	}
	if s.gen == nil {
		return []string{}, nil
	}
	return s.gen.GenerateSuggestions(ctx, query, limit), nil
}

func canManageSpot(spot *models.Spot, requester *models.User) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin() || spot.Creator == requester.ID
}
