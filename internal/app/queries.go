package app

import (
	"context"
	"time"

	"flex_reviews/internal/domain"
)

// reviewsCacheKey caches the full store read; every successful mutation
// deletes it, so readers never see a stale list after a write.
const reviewsCacheKey = "reviews:all"

// ListingQueryService runs the read pipeline: store -> filter -> aggregate
// -> assemble. The review list is cached as a whole; aggregation itself is
// cheap, pure and recomputed per request.
type ListingQueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewListingQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *ListingQueryService {
	return &ListingQueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *ListingQueryService) reviews(ctx context.Context) ([]domain.Review, error) {
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, reviewsCacheKey, &cached); ok {
		return cached, nil
	}
	rs, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, reviewsCacheKey, rs, int(s.cacheTTL.Seconds()))
	return rs, nil
}

// AllReviews exposes the (cached) full review list for consumers that
// work on raw records, such as the bad-review scan.
func (s *ListingQueryService) AllReviews(ctx context.Context) ([]domain.Review, error) {
	return s.reviews(ctx)
}

// NormalizedListings computes the per-listing bundles for the given
// filters. When a listing name filter matches nothing, the filter value is
// retried verbatim against the derived slug identifiers, so lookups by
// listingId (e.g. "bayside-retreat") resolve too.
func (s *ListingQueryService) NormalizedListings(ctx context.Context, f Filters) (QueryResult, error) {
	all, err := s.reviews(ctx)
	if err != nil {
		return QueryResult{}, err
	}

	filtered := all
	if !f.Empty() {
		filtered = f.Apply(all)
	}
	bundles := Aggregate(filtered)
	if len(bundles) == 0 && f.Listing != "" {
		bundles = s.slugFallback(all, f)
	}
	listings, totals := Assemble(bundles, f.Sort)
	return QueryResult{Listings: listings, Totals: totals, Filters: f}, nil
}

func (s *ListingQueryService) slugFallback(all []domain.Review, f Filters) []domain.ListingBundle {
	relaxed := f
	relaxed.Listing = ""
	var matched []domain.ListingBundle
	for _, b := range Aggregate(relaxed.Apply(all)) {
		if b.ListingID == f.Listing {
			matched = append(matched, b)
		}
	}
	return matched
}
