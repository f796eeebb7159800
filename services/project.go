package services

import "deal-search/models"

// MaxResults caps how many listings a search returns.
const MaxResults = 5

// Project drops listings without a title or URL, keeps the first MaxResults
// and maps them to the public result shape.
func Project(ranked []models.Listing) *models.SearchResponse {
	resp := &models.SearchResponse{Results: make([]models.Result, 0, MaxResults)}

	for _, l := range ranked {
		if len(resp.Results) == MaxResults {
			break
		}
		if l.Title == "" || l.URL == "" {
			continue
		}
		resp.Results = append(resp.Results, models.Result{
			Title:    l.Title,
			Price:    l.Price,
			Location: l.Location,
			Seller:   l.Seller,
			Link:     l.URL,
			Source:   l.Source,
		})
	}
	return resp
}
