package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-search/models"
)

func sampleListings() []models.Listing {
	return []models.Listing{
		{Title: "Solar Panel", Location: "Austin, TX", Seller: "Acme", URL: "https://x/1", Source: models.SourceDeal},
		{Title: "Battery Pack", Location: "Reno, NV", Seller: "Volt", URL: "https://x/2", Source: models.SourceDeal},
		{Title: "Inverter", Location: "", Seller: "SolarEdge", URL: "https://x/3", Source: models.SourceFeed},
	}
}

func TestAggregateDealsBeforeFeed(t *testing.T) {
	deals := []models.Listing{{Title: "d1", Source: models.SourceDeal}, {Title: "d2", Source: models.SourceDeal}}
	feed := []models.Listing{{Title: "f1", Source: models.SourceFeed}}

	all := Aggregate(deals, feed)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"d1", "d2", "f1"}, titles(all))

	assert.Empty(t, Aggregate(nil, nil))
}

func TestFilterEmptyQueryIsNoop(t *testing.T) {
	in := sampleListings()
	for _, q := range []string{"", "   ", "\t"} {
		assert.Equal(t, in, Filter(q, in))
	}
}

func TestFilterSubstring(t *testing.T) {
	got := Filter("solar", []models.Listing{
		{Title: "Solar Panel", URL: "u1", Source: models.SourceDeal},
		{Title: "Battery Pack", URL: "u2", Source: models.SourceDeal},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Solar Panel", got[0].Title)
}

func TestFilterMatchesLocationSellerAndSource(t *testing.T) {
	in := sampleListings()

	assert.Equal(t, []string{"Battery Pack"}, titles(Filter("  RENO ", in)))
	assert.Equal(t, []string{"Solar Panel", "Inverter"}, titles(Filter("solar", in)))
	assert.Equal(t, []string{"Inverter"}, titles(Filter("feed", in)))
	assert.Empty(t, Filter("wind turbine", in))
}

func TestFilterIdempotent(t *testing.T) {
	in := sampleListings()
	for _, q := range []string{"solar", "deal", "x", "tx"} {
		once := Filter(q, in)
		assert.Equal(t, once, Filter(q, once), "query %q", q)
	}
}

func TestScore(t *testing.T) {
	l := models.Listing{Featured: true, DealScore: 2, Quantity: 600}
	assert.InDelta(t, 145.0, Score(l), 1e-9)

	assert.InDelta(t, 5.0, Score(models.Listing{Quantity: 100}), 1e-9)
	assert.Equal(t, 0.0, Score(models.Listing{}))
}

func TestRankHighestScoreFirst(t *testing.T) {
	listings := []models.Listing{
		{Title: "low", DealScore: 1},
		{Title: "Panel A", Featured: true, DealScore: 2, Quantity: 600, Price: 100},
		{Title: "mid", DealScore: 4, Quantity: 20},
	}

	ranked := Rank(listings)
	assert.Equal(t, []string{"Panel A", "mid", "low"}, titles(ranked))
}

func TestRankEqualScoreHigherPriceFirst(t *testing.T) {
	listings := []models.Listing{
		{Title: "cheap", DealScore: 5, Price: 10},
		{Title: "pricey", DealScore: 5, Price: 20},
	}

	ranked := Rank(listings)
	assert.Equal(t, []string{"pricey", "cheap"}, titles(ranked))
}

func TestRankStableForFullTies(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 20; i++ {
		listings = append(listings, models.Listing{Title: fmt.Sprintf("t%02d", i), DealScore: 1, Price: 50})
	}
	want := titles(listings)

	assert.Equal(t, want, titles(Rank(listings)))
}

func TestRankOrderingProperty(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 40; i++ {
		listings = append(listings, models.Listing{
			Title:     fmt.Sprintf("l%d", i),
			DealScore: float64(i % 4),
			Quantity:  (i * 37) % 700,
			Featured:  i%9 == 0,
			Price:     float64((i * 13) % 5),
		})
	}

	ranked := Rank(listings)
	for i := 1; i < len(ranked); i++ {
		prev, cur := Score(ranked[i-1]), Score(ranked[i])
		require.GreaterOrEqual(t, prev, cur, "position %d", i)
		if prev == cur {
			require.GreaterOrEqual(t, ranked[i-1].Price, ranked[i].Price, "position %d", i)
		}
	}
}

func TestProjectDropsIncompleteAndCaps(t *testing.T) {
	var ranked []models.Listing
	ranked = append(ranked,
		models.Listing{Title: "", URL: "https://x/no-title", Source: models.SourceDeal},
		models.Listing{Title: "no url", URL: "", Source: models.SourceFeed},
	)
	for i := 0; i < 8; i++ {
		ranked = append(ranked, models.Listing{
			Title: fmt.Sprintf("ok%d", i), URL: fmt.Sprintf("https://x/%d", i),
			Price: 9.5, Location: "Austin, TX", Seller: "Acme", Source: models.SourceDeal,
		})
	}

	resp := Project(ranked)
	require.Len(t, resp.Results, MaxResults)
	for i, r := range resp.Results {
		assert.Equal(t, fmt.Sprintf("ok%d", i), r.Title)
		assert.NotEmpty(t, r.Link)
	}
	assert.Equal(t, models.Result{
		Title: "ok0", Price: 9.5, Location: "Austin, TX", Seller: "Acme",
		Link: "https://x/0", Source: models.SourceDeal,
	}, resp.Results[0])
}

func TestProjectEmptyIsNotNil(t *testing.T) {
	resp := Project(nil)
	require.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func titles(ls []models.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Title)
	}
	return out
}
