package sources

import (
	"context"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"

	"deal-search/models"
	"deal-search/normalize"
	"deal-search/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// dealsEnvelope accepts both the current `data` shape and the legacy `deals` shape.
type dealsEnvelope struct {
	Data  any `json:"data"`
	Deals any `json:"deals"`
}

// dealRecord is the explicit, all-optional schema of one deals API record.
// Every field stays untyped until it passes through the normalizer.
type dealRecord struct {
	Title       any `mapstructure:"title"`
	SunhubPrice any `mapstructure:"sunhub_price"`
	Price       any `mapstructure:"price"`
	MSRP        any `mapstructure:"msrp"`
	City        any `mapstructure:"city"`
	State       any `mapstructure:"state"`
	Brand       any `mapstructure:"brand"`
	ListingID   any `mapstructure:"listing_id"`
	TotalQty    any `mapstructure:"totalQty"`
	Quantity    any `mapstructure:"quantity"`
	QOH         any `mapstructure:"qoh"`
	DealScore   any `mapstructure:"deal_score"`
	IsFeatured  any `mapstructure:"isFeatured"`
}

// DealsAdapter maps the deals API into Listings.
type DealsAdapter struct {
	endpoint    string
	urlTemplate string
	fetcher     Fetcher
	logger      *utils.Logger
}

// NewDealsAdapter creates a DealsAdapter. urlTemplate must contain "{id}", which
// is replaced with the record's listing identifier.
func NewDealsAdapter(endpoint, urlTemplate string, fetcher Fetcher, logger *utils.Logger) *DealsAdapter {
	return &DealsAdapter{
		endpoint:    endpoint,
		urlTemplate: urlTemplate,
		fetcher:     fetcher,
		logger:      logger,
	}
}

func (a *DealsAdapter) Source() models.Source { return models.SourceDeal }

// Listings fetches the deals endpoint once and maps every record.
func (a *DealsAdapter) Listings(ctx context.Context) ([]models.Listing, error) {
	body, err := a.fetcher.Fetch(ctx, a.endpoint)
	if err != nil {
		return nil, wrapFetchError(models.SourceDeal, a.endpoint, err)
	}
	return a.Parse(body)
}

// Parse maps a raw deals payload. A missing or non-list records field is an
// empty result; only undecodable JSON is an error.
func (a *DealsAdapter) Parse(body []byte) ([]models.Listing, error) {
	var env dealsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Valid JSON that is not an object (array, null, scalar) carries no records.
		if !json.Valid(body) {
			return nil, &ParseError{Source: models.SourceDeal, Err: err}
		}
		return []models.Listing{}, nil
	}

	records, ok := env.Data.([]any)
	if !ok {
		records, ok = env.Deals.([]any)
	}
	if !ok {
		a.logger.Debug("[deals] Payload has no records list")
		return []models.Listing{}, nil
	}

	listings := make([]models.Listing, 0, len(records))
	for i, raw := range records {
		fields, ok := raw.(map[string]any)
		if !ok {
			a.logger.Debug("[deals] Skipping record %d: not an object", i)
			continue
		}

		var rec dealRecord
		if err := mapstructure.Decode(fields, &rec); err != nil {
			a.logger.Debug("[deals] Skipping record %d: %v", i, err)
			continue
		}
		listings = append(listings, a.toListing(rec))
	}

	a.logger.Debug("[deals] Mapped %d of %d records", len(listings), len(records))
	return listings, nil
}

func (a *DealsAdapter) toListing(r dealRecord) models.Listing {
	return models.Listing{
		Title:     normalize.String(r.Title),
		Price:     normalize.NonNegative(firstPresent(r.SunhubPrice, r.Price, r.MSRP)),
		Location:  joinNonEmpty(", ", normalize.String(r.City), normalize.String(r.State)),
		Seller:    normalize.String(r.Brand),
		URL:       a.listingURL(r.ListingID),
		Source:    models.SourceDeal,
		Quantity:  normalize.Quantity(firstPresent(r.TotalQty, r.Quantity, nestedField(r.QOH, "quantity"))),
		DealScore: normalize.NonNegative(r.DealScore),
		Featured:  normalize.Bool(r.IsFeatured),
	}
}

func (a *DealsAdapter) listingURL(id any) string {
	switch v := id.(type) {
	case bool:
		return ""
	case float64:
		if v == 0 {
			return ""
		}
	}

	s := normalize.String(id)
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(a.urlTemplate, "{id}", url.PathEscape(s))
}

// firstPresent returns the first candidate that is not nil.
func firstPresent(candidates ...any) any {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func nestedField(obj any, key string) any {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
