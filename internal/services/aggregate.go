package services

import (
	"github.com/musa-app/musa-api/internal/ai"
	"github.com/musa-app/musa-api/internal/models"
)

// CombineResults merges generated candidates with stored spots into a single
// result list. Generated spots lead so fresh suggestions surface first, and
// stored spots are tagged with their source. No deduplication is attempted;
// generated candidates are ephemeral and carry no database identity.
func CombineResults(generated []ai.GeneratedSpot, stored []*models.Spot) []any {
	results := make([]any, 0, len(generated)+len(stored))
	for i := range generated {
		generated[i].Source = models.SourceOpenAI
		results = append(results, generated[i])
	}
	for _, spot := range stored {
		if spot.Source == "" {
			spot.Source = models.SourceDatabase
		}
		results = append(results, spot)
	}
	return results
}
