package app_test

import (
	"testing"

	"flex_reviews/internal/app"
)

func TestMapReview_CanonicalPayload(t *testing.T) {
	m := map[string]any{
		"id":           7453.0,
		"type":         "guest-to-host",
		"status":       "published",
		"rating":       nil,
		"publicReview": "Shane and family are wonderful!",
		"reviewCategory": []any{
			map[string]any{"category": "cleanliness", "rating": 10.0},
			map[string]any{"category": "communication", "rating": 9.0},
		},
		"submittedAt": "2020-08-21 22:45:14",
		"guestName":   "Shane Finkelstein",
		"listingName": "2B N1 A - 29 Shoreditch Heights",
		"channel":     "hostaway",
	}
	r := app.MapReview(m)
	if r.ID != 7453 || r.Type != "guest-to-host" || r.Status != "published" {
		t.Fatalf("header fields: %+v", r)
	}
	if r.Rating != nil {
		t.Fatalf("nil rating must stay nil, got %v", *r.Rating)
	}
	if len(r.Categories) != 2 || r.Categories[0].Rating != 10 {
		t.Fatalf("categories: %+v", r.Categories)
	}
	if r.SubmittedAt.Year() != 2020 || r.SubmittedAt.Month() != 8 {
		t.Fatalf("submittedAt: %v", r.SubmittedAt)
	}
	if r.GuestName == nil || *r.GuestName != "Shane Finkelstein" {
		t.Fatalf("guestName: %v", r.GuestName)
	}
	if r.ListingName == "" || r.Channel != "hostaway" {
		t.Fatalf("listing/channel: %+v", r)
	}
}

func TestMapReview_AliasAndNestedPaths(t *testing.T) {
	m := map[string]any{
		"review_id":    "88",
		"direction":    "host-to-guest",
		"state":        "submitted",
		"score":        "4,5",
		"comment":      "Great guests.",
		"created_at":   "2024-02-01T10:00:00Z",
		"reviewer":     map[string]any{"name": "Ana"},
		"listing_name": "Canal View Loft",
		"platform":     "airbnb",
		"approved":     true,
	}
	r := app.MapReview(m)
	if r.ID != 88 || r.Type != "host-to-guest" || r.Status != "submitted" {
		t.Fatalf("aliases: %+v", r)
	}
	if r.Rating == nil || *r.Rating != 4.5 {
		t.Fatalf("comma-decimal rating: %v", r.Rating)
	}
	if r.GuestName == nil || *r.GuestName != "Ana" {
		t.Fatalf("nested reviewer.name: %v", r.GuestName)
	}
	if r.Channel != "airbnb" || !r.Approved {
		t.Fatalf("channel/approved: %+v", r)
	}
}

func TestMapReviews_Count(t *testing.T) {
	raw := []map[string]any{
		{"id": 1.0, "listingName": "A"},
		{"id": 2.0, "listingName": "B"},
	}
	if got := app.MapReviews(raw); len(got) != 2 || got[1].ID != 2 {
		t.Fatalf("mapped: %+v", got)
	}
}
