package hostaway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/hostaway"
)

func TestClient_GetReviews_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 7453.0, "listingName": "Bayside Retreat"}})
		}
	}))
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.GetReviews(ctx, 101, 50)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0]["listingName"] != "Bayside Retreat" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetReviews_404ExhaustsCandidates(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err = cl.GetReviews(ctx, 1, 10); err == nil {
		t.Fatalf("expected error for 404")
	}
	// every legacy URL shape gets a chance before giving up
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 candidate URLs tried, got %d", hits)
	}
}

func TestClient_RequiresKey(t *testing.T) {
	if _, err := hostaway.New("http://example.test", "", 5); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
