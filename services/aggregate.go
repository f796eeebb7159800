package services

import "deal-search/models"

// Aggregate concatenates per-source listings in the order given.
// Relative order within each source is kept; nothing is merged or deduplicated.
func Aggregate(sources ...[]models.Listing) []models.Listing {
	total := 0
	for _, s := range sources {
		total += len(s)
	}

	out := make([]models.Listing, 0, total)
	for _, s := range sources {
		out = append(out, s...)
	}
	return out
}
