package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	"deal-search/models"
	"deal-search/normalize"
	"deal-search/utils"
)

// feedDocument is any root element holding one or more channels.
type feedDocument struct {
	Channels []feedChannel `xml:"channel"`
}

type feedChannel struct {
	Items []feedItem `xml:"item"`
}

type feedItem struct {
	XMLName xml.Name
	Fields  []feedField `xml:",any"`
}

type feedField struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// first returns the trimmed text of the first child named local in the item's
// own namespace. Extension elements such as atom:link are ignored.
func (it feedItem) first(local string) string {
	for _, f := range it.Fields {
		if f.XMLName.Local == local && f.XMLName.Space == it.XMLName.Space {
			return normalize.String(f.Text)
		}
	}
	return ""
}

// FeedAdapter maps the syndication feed into Listings.
type FeedAdapter struct {
	endpoint string
	fetcher  Fetcher
	logger   *utils.Logger
}

// NewFeedAdapter creates a FeedAdapter reading from endpoint.
func NewFeedAdapter(endpoint string, fetcher Fetcher, logger *utils.Logger) *FeedAdapter {
	return &FeedAdapter{endpoint: endpoint, fetcher: fetcher, logger: logger}
}

func (a *FeedAdapter) Source() models.Source { return models.SourceFeed }

// Listings fetches the feed once and maps every item of the first channel.
func (a *FeedAdapter) Listings(ctx context.Context) ([]models.Listing, error) {
	body, err := a.fetcher.Fetch(ctx, a.endpoint)
	if err != nil {
		return nil, wrapFetchError(models.SourceFeed, a.endpoint, err)
	}
	return a.Parse(body)
}

// Parse maps a raw feed document. An empty body or a document without items
// is an empty result; malformed XML is a *ParseError.
func (a *FeedAdapter) Parse(body []byte) ([]models.Listing, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []models.Listing{}, nil
	}

	// The prolog may declare a legacy encoding (ISO-8859-1, windows-1252, "utf8").
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var doc feedDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Listing{}, nil
		}
		return nil, &ParseError{Source: models.SourceFeed, Err: err}
	}

	if len(doc.Channels) == 0 {
		a.logger.Debug("[feed] Document has no channel element")
		return []models.Listing{}, nil
	}

	items := doc.Channels[0].Items
	listings := make([]models.Listing, 0, len(items))
	for _, it := range items {
		listings = append(listings, models.Listing{
			Title:    it.first("title"),
			Price:    normalize.NonNegative(it.first("price")),
			Location: it.first("location"),
			Seller:   it.first("brand"),
			URL:      it.first("link"),
			Source:   models.SourceFeed,
			Quantity: normalize.Quantity(it.first("quantity")),
		})
	}

	a.logger.Debug("[feed] Mapped %d items", len(listings))
	return listings, nil
}
