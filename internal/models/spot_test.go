package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validSpot() Spot {
	return Spot{
		Name:        "Street Art Alley",
		Description: "Rotating murals by local artists",
		Type:        SpotTypeVenue,
		Category:    "street_art",
		Mood:        []string{"upbeat"},
		Location: Location{
			Type:        "Point",
			Coordinates: []float64{2.35, 48.86},
		},
	}
}

func TestBeforeCreateFillsDefaults(t *testing.T) {
	spot := Spot{Name: "x", Description: "y"}
	require.NoError(t, spot.BeforeCreate())

	assert.False(t, spot.ID.IsZero())
	assert.Equal(t, SpotTypeArtwork, spot.Type)
	assert.Equal(t, "other", spot.Category)
	assert.Equal(t, "Point", spot.Location.Type)
	assert.Equal(t, SourceDatabase, spot.Source)
}

func TestValidateSpotAcceptsValid(t *testing.T) {
	assert.NoError(t, validSpot().ValidateSpot())
}

func TestValidateSpotRejectsBadEnum(t *testing.T) {
	spot := validSpot()
	spot.Type = "museum"
	assert.Error(t, spot.ValidateSpot())

	spot = validSpot()
	spot.Category = "graffiti"
	assert.Error(t, spot.ValidateSpot())

	spot = validSpot()
	spot.Mood = []string{"angry"}
	assert.Error(t, spot.ValidateSpot())
}

func TestValidateSpotRejectsBadCoordinates(t *testing.T) {
	spot := validSpot()
	spot.Location.Coordinates = []float64{2.35}
	assert.Error(t, spot.ValidateSpot())

	spot = validSpot()
	spot.Location.Coordinates = []float64{200, 48.86}
	assert.Error(t, spot.ValidateSpot())

	spot = validSpot()
	spot.Location.Coordinates = []float64{2.35, -95}
	assert.Error(t, spot.ValidateSpot())
}

func TestValidateSpotRejectsOutOfRangeRating(t *testing.T) {
	spot := validSpot()
	spot.Rating = Rating{Average: 5.5}
	assert.Error(t, spot.ValidateSpot())
}

func TestSanitizeTrimsAndDedupes(t *testing.T) {
	spot := validSpot()
	spot.Name = "  Street Art Alley  "
	spot.Tags = []string{"mural", "mural", "paint"}
	spot.Sanitize()

	assert.Equal(t, "Street Art Alley", spot.Name)
	assert.Equal(t, []string{"mural", "paint"}, spot.Tags)
}

func TestDistanceFromSamePointIsZero(t *testing.T) {
	spot := validSpot()
	assert.InDelta(t, 0, spot.DistanceFrom(48.86, 2.35), 1e-9)
}

func TestDistanceFromKnownCities(t *testing.T) {
	// Paris to London is roughly 344 km.
	paris := validSpot()
	got := paris.DistanceFrom(51.5074, -0.1278)
	assert.InDelta(t, 344, got, 5)
}

func TestDistanceFromIsSymmetric(t *testing.T) {
	a := validSpot()
	b := validSpot()
	b.Location.Coordinates = []float64{-0.1278, 51.5074}

	d1 := a.DistanceFrom(51.5074, -0.1278)
	d2 := b.DistanceFrom(48.86, 2.35)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceFromMissingCoordinatesIsNaN(t *testing.T) {
	spot := validSpot()
	spot.Location.Coordinates = nil
	assert.True(t, math.IsNaN(spot.DistanceFrom(0, 0)))
}

func TestValidateUGContentByType(t *testing.T) {
	base := UGContent{
		Spot: primitive.NewObjectID(),
		User: primitive.NewObjectID(),
	}

	review := base
	review.Type = UGCTypeReview
	review.Content = "great"
	review.Rating = 4
	assert.NoError(t, review.ValidateUGContent())

	review.Rating = 6
	assert.Error(t, review.ValidateUGContent())

	comment := base
	comment.Type = UGCTypeComment
	comment.Content = "nice"
	assert.NoError(t, comment.ValidateUGContent())

	comment.Rating = 3
	assert.Error(t, comment.ValidateUGContent(), "comments cannot carry a rating")

	photo := base
	photo.Type = UGCTypePhoto
	assert.Error(t, photo.ValidateUGContent(), "photos require an imageUrl")

	photo.ImageURL = "https://example.com/p.jpg"
	assert.NoError(t, photo.ValidateUGContent())
}
