package domain

// TrendPoint is one month of averaged rating, keyed "YYYY-MM".
type TrendPoint struct {
	Date      string   `json:"date"`
	RatingAvg *float64 `json:"ratingAvg"`
}

// ListingBundle is the computed aggregate for one listing over a filtered
// review set. Bundles are ephemeral read models, recomputed per query.
type ListingBundle struct {
	ListingID        string             `json:"listingId"` // slug of ListingName; collisions are not disambiguated
	ListingName      string             `json:"listingName"`
	RatingAvg        *float64           `json:"ratingAvg"` // nil when no member has a resolvable rating
	CategoryAverages map[string]float64 `json:"categoryAverages"`
	ChannelStats     map[string]int     `json:"channelStats"`
	Reviews          []Review           `json:"reviews"`
	Trend            []TrendPoint       `json:"trend"`
}

// Totals summarises a query result. ReviewCount counts filtered reviews,
// not the whole store.
type Totals struct {
	ReviewCount  int `json:"reviewCount"`
	ListingCount int `json:"listingCount"`
}
