package services

import (
	"strings"

	"deal-search/models"
	"deal-search/normalize"
)

// Filter keeps listings whose searchable text contains the normalised query.
// An empty query returns the input unchanged.
func Filter(query string, listings []models.Listing) []models.Listing {
	q := normalize.Text(query)
	if q == "" {
		return listings
	}

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if containsQuery(l, q) {
			out = append(out, l)
		}
	}
	return out
}

func containsQuery(l models.Listing, q string) bool {
	hay := normalize.Text(l.Title + " " + l.Location + " " + l.Seller + " " + string(l.Source))
	return strings.Contains(hay, q)
}
