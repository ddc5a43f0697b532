package models

import (
	"log/slog"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mean Earth radius used to convert a km radius into radians for
// $centerSphere, matching the 2dsphere convention.
const earthRadiusGeoKm = 6378.1

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "-createdAt"
)

// SpotQueryParams holds raw request filter values; numeric fields stay
// strings so malformed input can be coerced or skipped without erroring.
type SpotQueryParams struct {
	Search     string
	Type       string
	Category   string
	Mood       string
	MusicGenre string

	Lat      string
	Lng      string
	Distance string

	Page  string
	Limit string
	Sort  string
}

// BuildSpotFilter translates search parameters into a MongoDB filter over the
// spots collection. Unapproved spots stay hidden unless the requester is an
// admin. Invalid geo parameters are logged and the geo clause is skipped.
func BuildSpotFilter(params SpotQueryParams, requester *User, logger *slog.Logger) bson.M {
	if logger == nil {
		logger = slog.Default()
	}

	query := bson.M{}

	if params.Search != "" {
		pattern := primitive.Regex{Pattern: params.Search, Options: "i"}
		query["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"tags": bson.M{"$in": []primitive.Regex{pattern}}},
		}
	}

	if params.Type != "" {
		query["type"] = params.Type
	}

	if params.Category != "" {
		query["category"] = params.Category
	}

	if params.Mood != "" {
		query["mood"] = bson.M{"$in": []string{params.Mood}}
	}

	if params.MusicGenre != "" {
		query["musicGenres"] = bson.M{"$in": []string{params.MusicGenre}}
	}

	if params.Lat != "" && params.Lng != "" && params.Distance != "" {
		lat, latErr := strconv.ParseFloat(params.Lat, 64)
		lng, lngErr := strconv.ParseFloat(params.Lng, 64)
		distance, distErr := strconv.ParseFloat(params.Distance, 64)
		if latErr != nil || lngErr != nil || distErr != nil {
			logger.Warn("invalid geo parameters, skipping geo filter",
				"lat", params.Lat, "lng", params.Lng, "distance", params.Distance)
		} else {
			query["location.coordinates"] = CenterSphereFilter(lat, lng, distance)
		}
	}

	if requester == nil || !requester.IsAdmin() {
		query["isApproved"] = true
	}

	return query
}

// CenterSphereFilter selects coordinates within radiusKm of the center point.
// A non-positive radius degenerates to the exact center point.
func CenterSphereFilter(lat, lng, radiusKm float64) bson.M {
	if radiusKm < 0 {
		radiusKm = 0
	}
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": []interface{}{
				[]float64{lng, lat},
				radiusKm / earthRadiusGeoKm,
			},
		},
	}
}

// BuildFindOptions converts page/limit/sort parameters into mongo find
// options. Non-numeric values fall back to defaults rather than erroring.
func BuildFindOptions(params SpotQueryParams) *options.FindOptions {
	page := parsePositiveInt(params.Page, DefaultPage)
	limit := parsePositiveInt(params.Limit, DefaultLimit)

	sort := params.Sort
	if sort == "" {
		sort = DefaultSort
	}
	field := sort
	order := 1
	if strings.HasPrefix(sort, "-") {
		field = strings.TrimPrefix(sort, "-")
		order = -1
	}

	return options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: field, Value: order}})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
