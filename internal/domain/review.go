package domain

import "time"

type ReviewType string

const (
	GuestToHost ReviewType = "guest-to-host"
	HostToGuest ReviewType = "host-to-guest"
)

// Lifecycle states a review moves through on the booking platform. The
// engine aggregates every status; visibility is the caller's concern.
type ReviewStatus string

const (
	StatusAwaiting  ReviewStatus = "awaiting"
	StatusPending   ReviewStatus = "pending"
	StatusScheduled ReviewStatus = "scheduled"
	StatusSubmitted ReviewStatus = "submitted"
	StatusPublished ReviewStatus = "published"
	StatusExpired   ReviewStatus = "expired"
)

// CategoryScore is a sub-rating (cleanliness, communication, ...) on a
// 10-point scale.
type CategoryScore struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

type Review struct {
	ID          int64           `json:"id"`
	Type        ReviewType      `json:"type"`
	Status      ReviewStatus    `json:"status"`
	Rating      *float64        `json:"rating"` // explicit 1-5 value; nil when only categories carry signal
	Text        string          `json:"publicReview"`
	Categories  []CategoryScore `json:"reviewCategory"`
	SubmittedAt time.Time       `json:"submittedAt"`
	GuestName   *string         `json:"guestName,omitempty"`
	ListingName string          `json:"listingName"` // grouping key, never empty
	Channel     string          `json:"channel"`
	Approved    bool            `json:"approved"`
}
