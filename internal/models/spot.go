package models

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/musa-app/musa-api/internal/helpers"
)

const (
	SpotTypeArtwork    = "artwork"
	SpotTypeVenue      = "venue"
	SpotTypeEvent      = "event"
	SpotTypeCollection = "collection"

	SourceDatabase = "database"
	SourceOpenAI   = "openai"
)

var SpotTypes = []string{SpotTypeArtwork, SpotTypeVenue, SpotTypeEvent, SpotTypeCollection}

var SpotCategories = []string{
	"painting", "sculpture", "photography", "architecture", "installation",
	"street_art", "performance", "digital", "mixed", "other",
}

var SpotMoods = []string{
	"engaged", "romantic", "upbeat", "glamour", "spiritual",
	"hedonist", "humour", "shocking", "melancholy", "mellow",
}

// Location stores a GeoJSON point; coordinates are [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address" json:"address"`
	City        string    `bson:"city" json:"city"`
	Country     string    `bson:"country" json:"country"`
}

type SpotImage struct {
	URL     string `bson:"url" json:"url"`
	Caption string `bson:"caption" json:"caption"`
}

type DateRange struct {
	StartDate *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

type ContactInfo struct {
	Website      string `bson:"website" json:"website"`
	Phone        string `bson:"phone" json:"phone"`
	Email        string `bson:"email" json:"email"`
	OpeningHours string `bson:"openingHours" json:"openingHours"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Spot struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name" validate:"required"`
	Description string              `bson:"description" json:"description" validate:"required"`
	Type        string              `bson:"type" json:"type"`
	Location    Location            `bson:"location" json:"location"`
	Images      []SpotImage         `bson:"images" json:"images"`
	Category    string              `bson:"category" json:"category"`
	Mood        []string            `bson:"mood" json:"mood"`
	MusicGenres []string            `bson:"musicGenres" json:"musicGenres"`
	Tags        []string            `bson:"tags" json:"tags"`
	DateRange   *DateRange          `bson:"dateRange,omitempty" json:"dateRange,omitempty"`
	ParentID    *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	// Number of artworks contained by a venue or collection.
	ChildrenCount int                `bson:"childrenCount" json:"childrenCount"`
	ContactInfo   ContactInfo        `bson:"contactInfo" json:"contactInfo"`
	Creator       primitive.ObjectID `bson:"creator" json:"creator"`
	IsApproved    bool               `bson:"isApproved" json:"isApproved"`
	Rating        Rating             `bson:"rating" json:"rating"`
	Source        string             `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (s *Spot) BeforeCreate() error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.Type == "" {
		s.Type = SpotTypeArtwork
	}
	if s.Category == "" {
		s.Category = "other"
	}
	if s.Location.Type == "" {
		s.Location.Type = "Point"
	}
	if s.Source == "" {
		s.Source = SourceDatabase
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (s Spot) ValidateSpot() error {
	if err := Validate.Struct(s); err != nil {
		return err
	}
	if s.Type != "" && !contains(SpotTypes, s.Type) {
		return fmt.Errorf("invalid spot type: %s", s.Type)
	}
	if s.Category != "" && !contains(SpotCategories, s.Category) {
		return fmt.Errorf("invalid category: %s", s.Category)
	}
	for _, m := range s.Mood {
		if !contains(SpotMoods, m) {
			return fmt.Errorf("invalid mood: %s", m)
		}
	}
	if len(s.Location.Coordinates) != 2 {
		return fmt.Errorf("coordinates must be a [longitude, latitude] pair")
	}
	lng, lat := s.Location.Coordinates[0], s.Location.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("coordinates out of range: [%f, %f]", lng, lat)
	}
	if s.Rating.Average < 0 || s.Rating.Average > 5 {
		return fmt.Errorf("rating average must be between 0 and 5")
	}
	return nil
}

func (s *Spot) Sanitize() {
	s.Name = helpers.StringTrim(s.Name)
	s.Description = helpers.StringTrim(s.Description)
	s.Tags = helpers.RemoveDuplicates(s.Tags)
	s.Mood = helpers.RemoveDuplicates(s.Mood)
	s.MusicGenres = helpers.RemoveDuplicates(s.MusicGenres)
}

// DistanceFrom returns the great-circle distance in km from the spot to the
// given point, by the haversine formula.
func (s Spot) DistanceFrom(lat, lng float64) float64 {
	if len(s.Location.Coordinates) != 2 {
		return math.NaN()
	}
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	spotLng, spotLat := s.Location.Coordinates[0], s.Location.Coordinates[1]
	dLat := toRad(lat - spotLat)
	dLon := toRad(lng - spotLng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(spotLat))*math.Cos(toRad(lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
