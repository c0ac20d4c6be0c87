package backfill

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nowmarket/internal/market"
)

type fakeSeeder struct {
	mu     sync.Mutex
	merged map[string][]int64
}

func newFakeSeeder() *fakeSeeder {
	return &fakeSeeder{merged: make(map[string][]int64)}
}

func (s *fakeSeeder) MergeBackfill(_ context.Context, symbol string, closes []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merged[symbol] = closes
	return nil
}

func (s *fakeSeeder) Symbols() []string { return []string{"COBOLT", "NIMBUS"} }

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *countingFetcher) Closes(_ context.Context, symbol string, days int) ([]int64, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("upstream down")
	}
	out := make([]int64, days)
	for i := range out {
		out[i] = 100 * market.MicrosPerNow
	}
	return out, nil
}

func (f *countingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSyntheticDeterministic(t *testing.T) {
	s := &Synthetic{}
	a, err := s.Closes(context.Background(), "COBOLT", 30)
	if err != nil {
		t.Fatalf("closes: %v", err)
	}
	b, err := s.Closes(context.Background(), "COBOLT", 30)
	if err != nil {
		t.Fatalf("closes: %v", err)
	}
	if len(a) != 30 {
		t.Fatalf("len got %d want 30", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("series diverged at %d: %d vs %d", i, a[i], b[i])
		}
		if a[i] < market.MinPriceMicros {
			t.Fatalf("close %d below floor", a[i])
		}
	}

	other, err := s.Closes(context.Background(), "NIMBUS", 30)
	if err != nil {
		t.Fatalf("closes: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different symbols produced identical series")
	}
}

func TestManagerCachesWithinTTL(t *testing.T) {
	seeder := newFakeSeeder()
	fetcher := &countingFetcher{}
	m := NewManager(seeder, fetcher, &Synthetic{}, time.Hour, 10, nil)

	for i := 0; i < 5; i++ {
		if err := m.Ensure(context.Background(), "COBOLT"); err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("fetcher called %d times want 1", fetcher.callCount())
	}
	if len(seeder.merged["COBOLT"]) != 10 {
		t.Fatalf("merged %d closes want 10", len(seeder.merged["COBOLT"]))
	}
}

func TestManagerFallsBackToSynthetic(t *testing.T) {
	seeder := newFakeSeeder()
	fetcher := &countingFetcher{fail: true}
	m := NewManager(seeder, fetcher, &Synthetic{}, time.Hour, 15, nil)

	if err := m.Ensure(context.Background(), "NIMBUS"); err != nil {
		t.Fatalf("ensure with fallback: %v", err)
	}
	if len(seeder.merged["NIMBUS"]) != 15 {
		t.Fatalf("fallback merged %d closes want 15", len(seeder.merged["NIMBUS"]))
	}
}

func TestManagerWarmCoversCatalog(t *testing.T) {
	seeder := newFakeSeeder()
	m := NewManager(seeder, nil, &Synthetic{}, time.Hour, 10, nil)

	m.Warm(context.Background())
	for _, symbol := range seeder.Symbols() {
		if len(seeder.merged[symbol]) == 0 {
			t.Fatalf("warm skipped %s", symbol)
		}
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/history/COBOLT" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"symbol":"COBOLT","closes":[120.5,121.25,119.0]}`)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, time.Second)
	closes, err := f.Closes(context.Background(), "COBOLT", 3)
	if err != nil {
		t.Fatalf("closes: %v", err)
	}
	want := []int64{120_500_000, 121_250_000, 119_000_000}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("close %d got %d want %d", i, closes[i], want[i])
		}
	}

	if _, err := f.Closes(context.Background(), "NOPE", 3); err == nil {
		t.Fatalf("expected 404 to surface as an error")
	}
}

func TestHTTPFetcherRejectsEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"symbol":"COBOLT","closes":[]}`)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, time.Second)
	if _, err := f.Closes(context.Background(), "COBOLT", 3); err == nil {
		t.Fatalf("expected empty series to fail")
	}
}
