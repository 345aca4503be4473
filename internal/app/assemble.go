package app

import (
	"sort"

	"flex_reviews/internal/domain"
)

// QueryResult is the read model handed to the presentation layer: the
// bundles, totals over the filtered set, and an echo of the filters that
// produced them.
type QueryResult struct {
	Listings []domain.ListingBundle `json:"listings"`
	Totals   domain.Totals          `json:"totals"`
	Filters  Filters                `json:"filters"`
}

// Assemble orders bundles by rating average when sort is asc/desc (nil
// averages compare as 0; any other value preserves Aggregate order) and
// attaches totals. ReviewCount sums filtered members, not the whole store.
func Assemble(bundles []domain.ListingBundle, sortOrder string) ([]domain.ListingBundle, domain.Totals) {
	key := func(b domain.ListingBundle) float64 {
		if b.RatingAvg == nil {
			return 0
		}
		return *b.RatingAvg
	}
	switch sortOrder {
	case "asc":
		sort.SliceStable(bundles, func(i, j int) bool { return key(bundles[i]) < key(bundles[j]) })
	case "desc":
		sort.SliceStable(bundles, func(i, j int) bool { return key(bundles[i]) > key(bundles[j]) })
	}

	var t domain.Totals
	t.ListingCount = len(bundles)
	for _, b := range bundles {
		t.ReviewCount += len(b.Reviews)
	}
	return bundles, t
}
