package services

import (
	"sort"

	"deal-search/models"
)

const (
	featuredBonus   = 100
	dealScoreWeight = 10
	quantityCap     = 500
	quantityWeight  = 0.05
)

// Score is the composite ranking signal: promotion, upstream deal score and
// capped availability. Price is deliberately not part of it.
func Score(l models.Listing) float64 {
	// Conversions round each term so no platform fuses the multiply-adds and
	// equal inputs always produce bit-identical scores.
	score := float64(l.DealScore * dealScoreWeight)
	if l.Featured {
		score += featuredBonus
	}
	return score + float64(float64(min(l.Quantity, quantityCap))*quantityWeight)
}

// Rank sorts listings in place by descending score. Equal scores put the higher
// price first so the cheapest offer is not surfaced by default; listings that
// tie on both keep their input order.
func Rank(listings []models.Listing) []models.Listing {
	scores := make([]float64, len(listings))
	for i, l := range listings {
		scores[i] = Score(l)
	}

	sort.Stable(byScore{listings: listings, scores: scores})
	return listings
}

type byScore struct {
	listings []models.Listing
	scores   []float64
}

func (b byScore) Len() int { return len(b.listings) }

func (b byScore) Less(i, j int) bool {
	if b.scores[i] != b.scores[j] {
		return b.scores[i] > b.scores[j]
	}
	return b.listings[i].Price > b.listings[j].Price
}

func (b byScore) Swap(i, j int) {
	b.listings[i], b.listings[j] = b.listings[j], b.listings[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}
