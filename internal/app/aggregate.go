package app

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"flex_reviews/internal/domain"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Slugify derives the stable external identifier of a listing from its
// display name: lower-cased, runs of whitespace collapsed to single
// hyphens. Distinct names that slugify identically are not disambiguated.
func Slugify(name string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(name), "-")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate groups the (already filtered) reviews by exact listing name and
// computes one bundle per group: overall rating average, per-category
// averages on the 5-point scale, per-channel counts and a monthly trend
// series. Bundle order follows first appearance of each listing name, so
// repeated runs over the same input are identical.
func Aggregate(reviews []domain.Review) []domain.ListingBundle {
	var names []string
	groups := make(map[string][]domain.Review)
	for _, r := range reviews {
		if _, seen := groups[r.ListingName]; !seen {
			names = append(names, r.ListingName)
		}
		groups[r.ListingName] = append(groups[r.ListingName], r)
	}

	bundles := make([]domain.ListingBundle, 0, len(names))
	for _, name := range names {
		bundles = append(bundles, bundle(name, groups[name]))
	}
	return bundles
}

type acc struct {
	sum   float64
	count int
}

func (a *acc) add(v float64) { a.sum += v; a.count++ }

func (a acc) mean() float64 { return a.sum / float64(a.count) }

func bundle(name string, members []domain.Review) domain.ListingBundle {
	var overall acc
	categories := make(map[string]*acc)
	channels := make(map[string]int)
	months := make(map[string]*acc)

	for _, r := range members {
		key := r.SubmittedAt.UTC().Format("2006-01")
		if months[key] == nil {
			months[key] = &acc{}
		}
		if rating := ResolveRating(r); rating != nil {
			overall.add(*rating)
			months[key].add(*rating)
		}
		for _, c := range r.Categories {
			if categories[c.Category] == nil {
				categories[c.Category] = &acc{}
			}
			categories[c.Category].add(c.Rating)
		}
		channels[r.Channel]++
	}

	b := domain.ListingBundle{
		ListingID:        Slugify(name),
		ListingName:      name,
		CategoryAverages: make(map[string]float64, len(categories)),
		ChannelStats:     channels,
		Reviews:          members,
		Trend:            make([]domain.TrendPoint, 0, len(months)),
	}
	if overall.count > 0 {
		avg := round2(overall.mean())
		b.RatingAvg = &avg
	}
	for cat, a := range categories {
		// raw scores are on the 10-point scale; halve the mean
		b.CategoryAverages[cat] = round2(a.mean() / 2)
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys) // lexicographic == chronological for YYYY-MM
	for _, k := range keys {
		p := domain.TrendPoint{Date: k}
		if months[k].count > 0 {
			avg := round2(months[k].mean())
			p.RatingAvg = &avg
		}
		b.Trend = append(b.Trend, p)
	}
	return b
}
