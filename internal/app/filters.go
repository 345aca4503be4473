package app

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// Filters is the query a caller can run against the review set. Every
// field is optional; present fields compose with logical AND.
type Filters struct {
	Listing      string     `json:"listing,omitempty"`      // case-insensitive substring of listing name
	Type         string     `json:"type,omitempty"`         // exact review direction
	Channel      string     `json:"channel,omitempty"`      // exact channel name
	From         *time.Time `json:"from,omitempty"`         // inclusive lower bound on submittedAt
	To           *time.Time `json:"to,omitempty"`           // inclusive upper bound on submittedAt
	MinRating    *float64   `json:"minRating,omitempty"`    // resolved-rating threshold; unresolvable ratings are excluded
	Sort         string     `json:"sort,omitempty"`         // asc|desc by ratingAvg, applied by Assemble
	ApprovedOnly bool       `json:"approvedOnly,omitempty"` // keep approved reviews only
}

func (f Filters) Empty() bool {
	return f.Listing == "" && f.Type == "" && f.Channel == "" &&
		f.From == nil && f.To == nil && f.MinRating == nil && !f.ApprovedOnly
}

// Apply returns the subset of rs matching every present filter. An empty
// Filters value is the identity. Sort is not applied here; it orders
// bundles, not reviews.
func (f Filters) Apply(rs []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filters) match(r domain.Review) bool {
	if f.Listing != "" &&
		!strings.Contains(strings.ToLower(r.ListingName), strings.ToLower(f.Listing)) {
		return false
	}
	if f.Type != "" && string(r.Type) != f.Type {
		return false
	}
	if f.Channel != "" && r.Channel != f.Channel {
		return false
	}
	if f.ApprovedOnly && !r.Approved {
		return false
	}
	if f.From != nil && r.SubmittedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.SubmittedAt.After(*f.To) {
		return false
	}
	if f.MinRating != nil {
		resolved := ResolveRating(r)
		if resolved == nil || *resolved < *f.MinRating {
			return false
		}
	}
	return true
}

// ParseFilters builds Filters from HTTP query parameters. Malformed values
// (unparseable dates, non-numeric minRating) drop the filter rather than
// error, so the engine stays defined over every query shape.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Listing: q.Get("listing"),
		Type:    q.Get("type"),
		Channel: q.Get("channel"),
	}
	if t, ok := parseDate(q.Get("from")); ok {
		f.From = &t
	}
	if t, ok := parseDate(q.Get("to")); ok {
		f.To = &t
	}
	if s := q.Get("minRating"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.MinRating = &v
		}
	}
	if s := q.Get("sort"); s == "asc" || s == "desc" {
		f.Sort = s
	}
	f.ApprovedOnly = q.Get("approvedOnly") == "true"
	return f
}

// parseDate accepts RFC3339 or plain YYYY-MM-DD (taken as midnight UTC).
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
