package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// ApprovalResult reports the outcome of an approval toggle.
type ApprovalResult struct {
	Success  bool `json:"success"`
	Approved bool `json:"approved"`
}

type ReviewRepository interface {
	// Write paths
	UpsertReviews(ctx context.Context, rs []Review) error
	// SetApproval sets the approval flag, or toggles it when approved is
	// nil. Returns ErrNotFound when the id is absent.
	SetApproval(ctx context.Context, id int64, approved *bool) (ApprovalResult, error)
	// DeleteReview reports false (no error) when the id is absent.
	DeleteReview(ctx context.Context, id int64) (bool, error)
	LogMiss(ctx context.Context, listingID int64, status int, reason string) error

	// Read path: the whole record list. Mutations made through this
	// repository are visible to the next ReadAll.
	ReadAll(ctx context.Context) ([]Review, error)
}

// ReviewsClient fetches raw review payloads from the booking platform.
type ReviewsClient interface {
	GetReviews(ctx context.Context, listingID int64, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
