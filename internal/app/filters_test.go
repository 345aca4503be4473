package app_test

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func sampleReviews() []domain.Review {
	r1 := rev(1, "Bayside Retreat", nil, []domain.CategoryScore{
		{Category: "cleanliness", Rating: 8},
		{Category: "communication", Rating: 8},
	}, "2024-01-05T12:00:00Z")
	r2 := rev(2, "Bayside Retreat", ptr(4.0), nil, "2024-02-10T09:30:00Z")
	r2.Approved = true
	r3 := rev(3, "Bayside Retreat", ptr(2.0), nil, "2024-02-20T18:00:00Z")
	r3.Channel = "airbnb"
	r4 := rev(4, "Canal View Loft", ptr(5.0), nil, "2024-03-01T08:00:00Z")
	r4.Type = domain.HostToGuest
	return []domain.Review{r1, r2, r3, r4}
}

func ids(rs []domain.Review) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestApply_EmptyFiltersIsIdentity(t *testing.T) {
	in := sampleReviews()
	out := app.Filters{}.Apply(in)
	if !reflect.DeepEqual(ids(out), ids(in)) {
		t.Fatalf("identity violated: %v != %v", ids(out), ids(in))
	}
}

func TestApply_ListingSubstringCaseInsensitive(t *testing.T) {
	out := app.Filters{Listing: "bAYSIDE"}.Apply(sampleReviews())
	if len(out) != 3 {
		t.Fatalf("expected 3 bayside reviews, got %d", len(out))
	}
}

func TestApply_TypeAndChannelExact(t *testing.T) {
	out := app.Filters{Type: "host-to-guest"}.Apply(sampleReviews())
	if len(out) != 1 || out[0].ID != 4 {
		t.Fatalf("type filter: %v", ids(out))
	}
	out = app.Filters{Channel: "airbnb"}.Apply(sampleReviews())
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("channel filter: %v", ids(out))
	}
}

func TestApply_ApprovedOnly(t *testing.T) {
	out := app.Filters{ApprovedOnly: true}.Apply(sampleReviews())
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("approvedOnly: %v", ids(out))
	}
}

func TestApply_DateRangeInclusive(t *testing.T) {
	from, _ := time.Parse(time.RFC3339, "2024-02-10T09:30:00Z") // exactly r2
	to, _ := time.Parse(time.RFC3339, "2024-02-20T18:00:00Z")   // exactly r3
	out := app.Filters{From: &from, To: &to}.Apply(sampleReviews())
	if !reflect.DeepEqual(ids(out), []int64{2, 3}) {
		t.Fatalf("inclusive range: %v", ids(out))
	}
}

func TestApply_MinRatingUsesResolvedRating(t *testing.T) {
	out := app.Filters{MinRating: ptr(3.0)}.Apply(sampleReviews())
	// r1 derives 4.0, r2 is 4, r3 is 2 (dropped), r4 is 5
	if !reflect.DeepEqual(ids(out), []int64{1, 2, 4}) {
		t.Fatalf("minRating: %v", ids(out))
	}
}

func TestApply_MinRatingExcludesUnresolvable(t *testing.T) {
	in := []domain.Review{rev(9, "Bayside Retreat", nil, nil, "2024-01-01T00:00:00Z")}
	if out := (app.Filters{MinRating: ptr(0.0)}).Apply(in); len(out) != 0 {
		t.Fatalf("review without ratable signal must be excluded, got %v", ids(out))
	}
}

func TestApply_ConjunctionOrderIndependent(t *testing.T) {
	in := sampleReviews()
	f := app.Filters{Listing: "bayside", MinRating: ptr(3.0), ApprovedOnly: true}
	out := f.Apply(in)
	if !reflect.DeepEqual(ids(out), []int64{2}) {
		t.Fatalf("conjunction: %v", ids(out))
	}
	// applying the predicates one at a time must agree with the conjunction
	step := app.Filters{ApprovedOnly: true}.Apply(
		app.Filters{MinRating: ptr(3.0)}.Apply(
			app.Filters{Listing: "bayside"}.Apply(in)))
	if !reflect.DeepEqual(ids(step), ids(out)) {
		t.Fatalf("sequenced vs conjoined: %v != %v", ids(step), ids(out))
	}
}

func TestEmpty_AnyPredicatePresentMeansNotEmpty(t *testing.T) {
	// the query path skips Apply entirely for empty filters, so Empty must
	// notice every predicate field
	now := time.Now()
	cases := []app.Filters{
		{Listing: "bayside"},
		{Type: "guest-to-host"},
		{Channel: "airbnb"},
		{From: &now},
		{To: &now},
		{MinRating: ptr(3.0)},
		{ApprovedOnly: true},
	}
	for i, f := range cases {
		if f.Empty() {
			t.Fatalf("case %d: %+v reported empty", i, f)
		}
	}
	// sort orders bundles, it does not select reviews
	if !(app.Filters{Sort: "desc"}).Empty() {
		t.Fatalf("sort-only filters must count as empty")
	}
}

func TestParseFilters_MalformedValuesFailOpen(t *testing.T) {
	q := url.Values{}
	q.Set("from", "not-a-date")
	q.Set("to", "2024-13-99")
	q.Set("minRating", "high")
	q.Set("sort", "sideways")
	f := app.ParseFilters(q)
	if f.From != nil || f.To != nil || f.MinRating != nil || f.Sort != "" {
		t.Fatalf("malformed values must drop the filter: %+v", f)
	}
	if !f.Empty() {
		t.Fatalf("expected empty filters, got %+v", f)
	}
}

func TestParseFilters_ParsesEverything(t *testing.T) {
	q := url.Values{}
	q.Set("listing", "Bayside")
	q.Set("type", "guest-to-host")
	q.Set("channel", "hostaway")
	q.Set("from", "2024-01-01")
	q.Set("to", "2024-03-01T00:00:00Z")
	q.Set("minRating", "3.5")
	q.Set("sort", "desc")
	q.Set("approvedOnly", "true")
	f := app.ParseFilters(q)
	if f.Listing != "Bayside" || f.Type != "guest-to-host" || f.Channel != "hostaway" ||
		f.From == nil || f.To == nil || f.MinRating == nil || *f.MinRating != 3.5 ||
		f.Sort != "desc" || !f.ApprovedOnly {
		t.Fatalf("parsed filters: %+v", f)
	}
	if !f.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("plain date should parse as midnight UTC, got %v", f.From)
	}
}
