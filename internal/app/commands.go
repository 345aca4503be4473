package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

// CurationService owns the two supported review mutations. Each success
// invalidates the cached review list so the next read reflects the change.
type CurationService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewCurationService(r domain.ReviewRepository, c domain.Cache) *CurationService {
	return &CurationService{repo: r, cache: c}
}

// SetApproval sets the approval flag of a review, or toggles it when
// approved is nil. A missing id comes back as Success=false, not an error.
func (s *CurationService) SetApproval(ctx context.Context, id int64, approved *bool) (domain.ApprovalResult, error) {
	res, err := s.repo.SetApproval(ctx, id, approved)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ApprovalResult{}, nil
		}
		return domain.ApprovalResult{}, err
	}
	s.invalidate(ctx)
	return res, nil
}

// Delete removes a review. Reports false when the id is absent.
func (s *CurationService) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.DeleteReview(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(ctx)
	}
	return ok, nil
}

func (s *CurationService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsCacheKey)
	}
}

// IngestionService pulls raw review payloads for one listing from the
// platform API, maps them and upserts them into the store.
type IngestionService struct {
	client domain.ReviewsClient
	repo   domain.ReviewRepository
	cache  domain.Cache
}

func NewIngestionService(c domain.ReviewsClient, r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{client: c, repo: r, cache: cache}
}

// IngestListing fetches up to count reviews for a listing. Known misses
// (404/401/403) are recorded and end the run gracefully; other errors
// bubble up. The review-list cache is dropped after any successful call,
// even an empty one, so stale snapshots never linger.
func (s *IngestionService) IngestListing(ctx context.Context, listingID int64, count int) error {
	raw, err := s.client.GetReviews(ctx, listingID, count)
	if err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found"):
			_ = s.repo.LogMiss(ctx, listingID, 404, "not found")
			s.invalidate(ctx)
			return nil
		case strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized"):
			_ = s.repo.LogMiss(ctx, listingID, 403, "inactive")
			s.invalidate(ctx)
			return nil
		default:
			return err
		}
	}

	if len(raw) > 0 {
		if err := s.repo.UpsertReviews(ctx, MapReviews(raw)); err != nil {
			return fmt.Errorf("upsert reviews failed for %d: %w", listingID, err)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *IngestionService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, reviewsCacheKey)
	}
}
