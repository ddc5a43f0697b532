package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/musa-app/musa-api/internal/models"
)

// GeneratedSpot is the shape we ask the model to produce. Title is accepted
// as an alias for Name because models drift between the two.
type GeneratedSpot struct {
	Name        string    `json:"name"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	Category    string    `json:"category,omitempty"`
	Mood        []string  `json:"mood,omitempty"`
	MusicGenres []string  `json:"musicGenres,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source"`
}

// GenerateParams narrows what the prompt asks for. HasGeo gates the
// location constraint so zero coordinates are not mistaken for a real point.
type GenerateParams struct {
	Query      string
	Place      string
	Mood       string
	MusicGenre string

	Lat      float64
	Lng      float64
	Distance float64
	HasGeo   bool
}

// SpotGenerator produces ephemeral spot candidates from a language model.
// Generation failures degrade to an empty result set rather than an error so
// a model outage never takes down search.
type SpotGenerator struct {
	gen    TextGenerator
	logger *slog.Logger
}

func NewSpotGenerator(gen TextGenerator, logger *slog.Logger) *SpotGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpotGenerator{gen: gen, logger: logger}
}

// GenerateSpots asks the model for art and culture spots matching the params.
// The returned slice is never nil and errors are swallowed after logging.
func (g *SpotGenerator) GenerateSpots(ctx context.Context, params GenerateParams) []GeneratedSpot {
	if g == nil || g.gen == nil {
		return []GeneratedSpot{}
	}

	raw, err := g.gen.GenerateContent(ctx, buildSpotPrompt(params))
	if err != nil {
		g.logger.Warn("spot generation failed", "error", err, "query", params.Query)
		return []GeneratedSpot{}
	}

	spots, err := parseSpots(raw)
	if err != nil {
		g.logger.Warn("failed to parse generated spots", "error", err)
		return []GeneratedSpot{}
	}
	return spots
}

// GenerateSuggestions returns short completion strings for a partial search
// query. Like GenerateSpots it fails open to an empty slice.
func (g *SpotGenerator) GenerateSuggestions(ctx context.Context, query string, limit int) []string {
	if g == nil || g.gen == nil {
		return []string{}
	}
	if limit <= 0 {
		limit = 5
	}

	raw, err := g.gen.GenerateContent(ctx, buildSuggestionPrompt(query, limit))
	if err != nil {
		g.logger.Warn("suggestion generation failed", "error", err, "query", query)
		return []string{}
	}

	cleaned := CleanJSONResponse(raw)

	var suggestions []string
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err == nil {
		return capStrings(suggestions, limit)
	}

	// Some models return spot objects instead of plain strings; salvage the
	// names from those.
	var spots []GeneratedSpot
	if err := json.Unmarshal([]byte(cleaned), &spots); err == nil {
		names := make([]string, 0, len(spots))
		for _, s := range spots {
			if name := spotName(s); name != "" {
				names = append(names, name)
			}
		}
		return capStrings(names, limit)
	}

	g.logger.Warn("failed to parse suggestions", "query", query)
	return []string{}
}

func parseSpots(raw string) ([]GeneratedSpot, error) {
	cleaned := CleanJSONResponse(raw)

	var spots []GeneratedSpot
	if err := json.Unmarshal([]byte(cleaned), &spots); err != nil {
		return nil, fmt.Errorf("unmarshal generated spots: %w", err)
	}

	out := make([]GeneratedSpot, 0, len(spots))
	for _, s := range spots {
		s.Name = spotName(s)
		if s.Name == "" {
			continue
		}
		s.Title = ""
		s.Source = models.SourceOpenAI
		out = append(out, s)
	}
	return out, nil
}

func spotName(s GeneratedSpot) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return strings.TrimSpace(s.Title)
}

func capStrings(in []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// CleanJSONResponse strips markdown code fences that models wrap around JSON
// payloads and trims to the outermost array or object.
func CleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexAny(cleaned, "[{")
	if start == -1 {
		return cleaned
	}
	var end int
	if cleaned[start] == '[' {
		end = strings.LastIndex(cleaned, "]")
	} else {
		end = strings.LastIndex(cleaned, "}")
	}
	if end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

func buildSpotPrompt(params GenerateParams) string {
	var b strings.Builder
	b.WriteString("You are an expert on art, culture and music venues worldwide. ")
	b.WriteString("Generate up to 5 real, currently existing art or culture spots")

	if params.Query != "" {
		fmt.Fprintf(&b, " matching the search %q", params.Query)
	}
	if params.Place != "" {
		fmt.Fprintf(&b, " in or near %s", params.Place)
	}
	if params.Mood != "" {
		fmt.Fprintf(&b, " with a %s mood", params.Mood)
	}
	if params.MusicGenre != "" {
		fmt.Fprintf(&b, " associated with %s music", params.MusicGenre)
	}
	if params.HasGeo {
		fmt.Fprintf(&b, " within %.1f km of latitude %f, longitude %f",
			params.Distance, params.Lat, params.Lng)
	}

	b.WriteString(".\n\n")
	b.WriteString("Respond with ONLY a JSON array, no prose and no markdown. Each element:\n")
	b.WriteString(`{"name": string, "description": string, "type": "artwork"|"venue"|"event"|"collection", `)
	b.WriteString(`"category": string, "coordinates": [longitude, latitude], "address": string, `)
	b.WriteString(`"city": string, "country": string, "mood": [string], "musicGenres": [string], "tags": [string]}`)
	b.WriteString("\n\nDo not invent places. If nothing fits, respond with [].")
	return b.String()
}

func buildSuggestionPrompt(query string, limit int) string {
	return fmt.Sprintf(
		"Suggest up to %d short search completions for someone looking for art and culture spots, "+
			"starting from the partial query %q. "+
			"Respond with ONLY a JSON array of strings, no prose and no markdown.",
		limit, query)
}
