package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sampleResponse = `{
	"elements": [
		{"type": "node", "id": 1, "lat": -25.74, "lon": 28.23,
		 "tags": {"name": "Koffie Huis", "amenity": "cafe"}},
		{"type": "node", "id": 2, "lat": -25.75, "lon": 28.24,
		 "tags": {"amenity": "bench"}},
		{"type": "way", "id": 3,
		 "center": {"lat": -25.76, "lon": 28.25},
		 "tags": {"name": "Spar Hatfield", "shop": "supermarket"}},
		{"type": "node", "id": 4, "lat": -25.77, "lon": 28.26,
		 "tags": {"name": "The Blue Crane", "amenity": "restaurant"}}
	]
}`

func newTestClient(endpoint string) *Client {
	c := NewClient(endpoint, zap.NewNop())
	c.timeoutUnit = time.Millisecond
	c.rateLimitUnit = 5 * time.Millisecond
	return c
}

func TestFetchDropsUnnamedElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d elements; want 3 (unnamed bench dropped)", len(got))
	}
	for _, el := range got {
		if el.Name() == "" {
			t.Errorf("unnamed element %d survived filtering", el.ID)
		}
	}
}

func TestFetchTruncatesAfterFiltering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d elements; want limit of 2", len(got))
	}
	// the unnamed element must not count toward the limit
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("unexpected elements after truncation: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestFetchCategoryFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 10, "supermarket")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("category filter returned %v; want only element 3", got)
	}
}

func TestFetchSendsOverpassQuery(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		query = r.PostFormValue("data")
		w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 5, "")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses: %v", err)
	}

	for _, want := range []string{"[out:json]", "[timeout:180]", `node["amenity"]`, `way["shop"]`, `node["tourism"]`, "out center;"} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	start := time.Now()
	got, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses after retries: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("upstream called %d times; want 3", calls)
	}
	if len(got) != 3 {
		t.Errorf("got %d elements from the successful attempt; want 3", len(got))
	}

	// backoff tiers: (1)*unit + (2)*unit = 3 units minimum total wait
	if elapsed := time.Since(start); elapsed < 3*time.Millisecond {
		t.Errorf("elapsed %v; want at least 3 backoff units", elapsed)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchAreaBusinesses(context.Background(), 10, "")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("upstream called %d times; want 3", calls)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error should mention attempt cap: %v", err)
	}
}

func TestFetchRateLimitUsesLongerBackoff(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	start := time.Now()
	_, err := c.FetchAreaBusinesses(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("FetchAreaBusinesses: %v", err)
	}
	// first retry after a 429 waits one rate-limit unit (5ms), not one
	// timeout unit (1ms)
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("elapsed %v; want at least one rate-limit backoff unit", elapsed)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&rateLimitError{status: 429, body: "slow down"}, true},
		{errRateLimitText, true},
		{errPlain, false},
	}
	for _, tt := range tests {
		if got := isRateLimited(tt.err); got != tt.want {
			t.Errorf("isRateLimited(%v) = %v; want %v", tt.err, got, tt.want)
		}
	}
}

var (
	errRateLimitText = errTest("overpass error 504: Rate limit exceeded, try again later")
	errPlain         = errTest("connection reset by peer")
)

type errTest string

func (e errTest) Error() string { return string(e) }
