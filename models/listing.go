package models

// Source tags where a Listing came from.
type Source string

const (
	SourceDeal Source = "deal"
	SourceFeed Source = "feed"
)

// Listing is the normalised record produced by every source adapter.
// Numeric fields are always finite and non-negative.
type Listing struct {
	Title     string
	Price     float64
	Location  string
	Seller    string
	URL       string
	Source    Source
	Quantity  int
	DealScore float64
	Featured  bool
}

// Result is the public shape of a ranked listing.
type Result struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
	Seller   string  `json:"seller"`
	Link     string  `json:"link"`
	Source   Source  `json:"source"`
}

// SearchResponse is returned to callers of the search endpoint.
// Results is never nil so it always encodes as a JSON array.
type SearchResponse struct {
	Results []Result `json:"results"`
}
