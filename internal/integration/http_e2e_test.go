//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/insights"
	"flex_reviews/internal/adapters/unsplash"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

// ---------- helpers ----------
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// noCache keeps the e2e test focused on the store path; the redis adapter
// has its own miniredis-backed suite.
type noCache struct{}

func (noCache) Get(ctx context.Context, key string, dst any) (bool, error)   { return false, nil }
func (noCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
func (noCache) Del(ctx context.Context, key string) error                    { return nil }

// ---------- the test ----------
func TestHTTP_EndToEnd_ReviewLifecycle(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexreviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "flexreviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Apply the real migrations
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Seed the flat review list
	ts1, _ := time.Parse(time.RFC3339, "2024-01-05T12:00:00Z")
	ts2, _ := time.Parse(time.RFC3339, "2024-02-10T09:30:00Z")
	seed := []domain.Review{
		{
			ID: 7, Type: domain.GuestToHost, Status: domain.StatusPublished,
			Categories: []domain.CategoryScore{
				{Category: "cleanliness", Rating: 8},
				{Category: "communication", Rating: 8},
			},
			SubmittedAt: ts1, ListingName: "Bayside Retreat", Channel: "hostaway",
		},
		{
			ID: 8, Type: domain.GuestToHost, Status: domain.StatusPublished,
			Rating: pfloat(4), Text: "Great host.",
			SubmittedAt: ts2, ListingName: "Bayside Retreat", Channel: "airbnb",
		},
	}
	if err := repo.UpsertReviews(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Real router and handlers on top of the real repo
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:        app.NewListingQueryService(repo, noCache{}, time.Minute),
		C:        app.NewCurationService(repo, noCache{}),
		Detector: insights.New("", "", time.Second),
		Images:   unsplash.New("", "", time.Second),
	})
	api := httptest.NewServer(srv.Mux())
	defer api.Close()

	// 1) aggregated listing query
	res, err := http.Get(api.URL + "/v1/reviews/hostaway?listing=bayside")
	if err != nil {
		t.Fatalf("GET listings: %v", err)
	}
	var out struct {
		Listings []domain.ListingBundle `json:"listings"`
		Totals   domain.Totals          `json:"totals"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || out.Totals.ListingCount != 1 {
		t.Fatalf("status=%d totals=%+v", res.StatusCode, out.Totals)
	}
	b := out.Listings[0]
	if b.ListingID != "bayside-retreat" || b.RatingAvg == nil || *b.RatingAvg != 4.0 {
		t.Fatalf("bundle: %+v", b)
	}
	if b.ChannelStats["hostaway"] != 1 || b.ChannelStats["airbnb"] != 1 {
		t.Fatalf("channelStats: %+v", b.ChannelStats)
	}
	if len(b.Trend) != 2 || b.Trend[0].Date != "2024-01" {
		t.Fatalf("trend: %+v", b.Trend)
	}

	// 2) approve review 7, check it shows up in an approvedOnly query
	res, err = http.Post(api.URL+"/v1/reviews/7/approve", "application/json", strings.NewReader(`{"approved":true}`))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("approve status: %d", res.StatusCode)
	}
	res, _ = http.Get(api.URL + "/v1/reviews/hostaway?approvedOnly=true")
	out.Totals = domain.Totals{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	res.Body.Close()
	if out.Totals.ReviewCount != 1 {
		t.Fatalf("approval not visible: %+v", out.Totals)
	}

	// 3) delete review 7: first 200, retry 404
	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/v1/reviews/7", nil)
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete status: %d", res.StatusCode)
	}
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status: %d", res.StatusCode)
	}
}
