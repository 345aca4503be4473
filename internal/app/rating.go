package app

import "flex_reviews/internal/domain"

// ResolveRating returns the effective 1-5 rating of a review: the explicit
// value when present, otherwise the mean of its category scores halved from
// the 10-point scale. Nil means no ratable signal. No rounding is applied;
// callers round for display.
func ResolveRating(r domain.Review) *float64 {
	if r.Rating != nil {
		v := *r.Rating
		return &v
	}
	if len(r.Categories) == 0 {
		return nil
	}
	var sum float64
	for _, c := range r.Categories {
		sum += c.Rating / 2
	}
	v := sum / float64(len(r.Categories))
	return &v
}
