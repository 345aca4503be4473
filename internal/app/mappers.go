package app

import (
	"strconv"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

/********** alias registry (single source of truth) **********/

// Platform exports drift between API versions; each canonical field lists
// the payload paths it may arrive under, tried in order.
var reviewAliases = map[string][]string{
	"id":         {"id", "review_id", "reviewId"},
	"type":       {"type", "review_type", "reviewType", "direction"},
	"status":     {"status", "review_status", "state"},
	"rating":     {"rating", "overall_rating", "overallRating", "score"},
	"text":       {"publicReview", "public_review", "text", "comment", "body"},
	"submitted":  {"submittedAt", "submitted_at", "departureDate", "created_at", "createdAt"},
	"guest":      {"guestName", "guest_name", "reviewer", "reviewer.name", "author"},
	"listing":    {"listingName", "listing_name", "listing.name", "propertyName"},
	"channel":    {"channel", "channelName", "channel_name", "platform", "source"},
	"categories": {"reviewCategory", "review_category", "categories"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStr: first non-empty string across the alias paths of key.
func firstStr(m map[string]any, key string) string {
	for _, p := range reviewAliases[key] {
		if s, ok := lookupAny(m, p).(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstFloat: first number across the alias paths (float64/int/"8,0").
func firstFloat(m map[string]any, key string) *float64 {
	for _, p := range reviewAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt64(m map[string]any, key string) int64 {
	if f := firstFloat(m, key); f != nil {
		return int64(*f)
	}
	return 0
}

// parseTimeFlexible accepts RFC3339 and the platform's space-separated form.
func parseTimeFlexible(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

/********** mapping **********/

// MapReview converts one raw platform payload into a domain.Review.
func MapReview(m map[string]any) domain.Review {
	r := domain.Review{
		ID:          firstInt64(m, "id"),
		Type:        domain.ReviewType(firstStr(m, "type")),
		Status:      domain.ReviewStatus(firstStr(m, "status")),
		Rating:      firstFloat(m, "rating"),
		Text:        firstStr(m, "text"),
		SubmittedAt: parseTimeFlexible(firstStr(m, "submitted")),
		ListingName: firstStr(m, "listing"),
		Channel:     firstStr(m, "channel"),
	}
	if g := firstStr(m, "guest"); g != "" {
		r.GuestName = &g
	}
	if b, ok := lookupAny(m, "approved").(bool); ok {
		r.Approved = b
	}
	for _, p := range reviewAliases["categories"] {
		arr, ok := lookupAny(m, p).([]any)
		if !ok {
			continue
		}
		for _, e := range arr {
			em, ok := e.(map[string]any)
			if !ok {
				continue
			}
			cs := domain.CategoryScore{}
			if s, ok := em["category"].(string); ok {
				cs.Category = s
			}
			switch v := em["rating"].(type) {
			case float64:
				cs.Rating = v
			case int:
				cs.Rating = float64(v)
			}
			if cs.Category != "" {
				r.Categories = append(r.Categories, cs)
			}
		}
		break
	}
	return r
}

func MapReviews(raw []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(raw))
	for _, m := range raw {
		out = append(out, MapReview(m))
	}
	return out
}
