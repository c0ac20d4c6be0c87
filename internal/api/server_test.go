package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nowmarket/internal/config"
	"nowmarket/internal/market"
	"nowmarket/internal/store"
	"nowmarket/internal/wallet"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	cash := wallet.New(market.StarterBalanceMicros)
	engine, err := market.New(market.Config{TickEvery: time.Hour}, market.DefaultCatalog(), market.DefaultTables(), cash, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(engine.Stop)

	snapshots, err := store.NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	srv := httptest.NewServer(New(config.APIConfig{}, nil, engine, snapshots, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestMarketEndpoints(t *testing.T) {
	srv := testServer(t)

	var listing struct {
		Stocks []market.InstrumentView `json:"stocks"`
	}
	if code := getJSON(t, srv.URL+"/v1/market", &listing); code != http.StatusOK {
		t.Fatalf("market list status %d", code)
	}
	if len(listing.Stocks) == 0 {
		t.Fatalf("empty market listing")
	}

	var detail market.InstrumentDetail
	if code := getJSON(t, srv.URL+"/v1/market/"+listing.Stocks[0].Symbol, &detail); code != http.StatusOK {
		t.Fatalf("detail status %d", code)
	}
	if detail.Symbol != listing.Stocks[0].Symbol {
		t.Fatalf("detail symbol got %s", detail.Symbol)
	}

	if code := getJSON(t, srv.URL+"/v1/market/ZZZZ", nil); code != http.StatusNotFound {
		t.Fatalf("unknown symbol status %d want 404", code)
	}
	if code := getJSON(t, srv.URL+"/v1/market/bad1", nil); code != http.StatusBadRequest {
		t.Fatalf("invalid symbol status %d want 400", code)
	}
}

func TestOrderFlow(t *testing.T) {
	srv := testServer(t)

	var result market.OrderResult
	code := postJSON(t, srv.URL+"/v1/orders", `{"symbol":"COBOLT","side":"buy","shares":2}`, &result)
	if code != http.StatusOK {
		t.Fatalf("buy status %d", code)
	}
	if result.Side != "buy" || result.Units != 2*market.ShareScale {
		t.Fatalf("order result wrong: %+v", result)
	}

	var portfolio market.PortfolioView
	if code := getJSON(t, srv.URL+"/v1/portfolio", &portfolio); code != http.StatusOK {
		t.Fatalf("portfolio status %d", code)
	}
	if len(portfolio.Holdings) != 1 {
		t.Fatalf("holdings got %d want 1", len(portfolio.Holdings))
	}

	if code := postJSON(t, srv.URL+"/v1/orders", `{"symbol":"COBOLT","side":"hold","shares":1}`, nil); code != http.StatusBadRequest {
		t.Fatalf("bad side status %d want 400", code)
	}
	if code := postJSON(t, srv.URL+"/v1/orders", `{"symbol":"COBOLT","side":"sell","shares":99}`, nil); code != http.StatusBadRequest {
		t.Fatalf("oversell status %d want 400", code)
	}
	if code := postJSON(t, srv.URL+"/v1/orders", `{"symbol":"COBOLT","side":"buy","shares":0}`, nil); code != http.StatusBadRequest {
		t.Fatalf("zero shares status %d want 400", code)
	}
}

func TestIndicesClockNewsEndpoints(t *testing.T) {
	srv := testServer(t)

	var indices struct {
		Indices []market.Index `json:"indices"`
	}
	if code := getJSON(t, srv.URL+"/v1/indices", &indices); code != http.StatusOK {
		t.Fatalf("indices status %d", code)
	}
	if len(indices.Indices) != 7 {
		t.Fatalf("indices got %d want 7", len(indices.Indices))
	}
	if code := getJSON(t, srv.URL+"/v1/indices/NOW", nil); code != http.StatusOK {
		t.Fatalf("composite lookup status %d", code)
	}

	var clock market.ClockView
	if code := getJSON(t, srv.URL+"/v1/clock", &clock); code != http.StatusOK {
		t.Fatalf("clock status %d", code)
	}
	if clock.MoodLabel == "" {
		t.Fatalf("missing mood label")
	}

	if code := getJSON(t, srv.URL+"/v1/news", nil); code != http.StatusOK {
		t.Fatalf("news status %d", code)
	}
}

func TestWatchAndSnapshotEndpoints(t *testing.T) {
	srv := testServer(t)

	var toggle struct {
		Symbol  string `json:"symbol"`
		Watched bool   `json:"watched"`
	}
	if code := postJSON(t, srv.URL+"/v1/watchlist/NIMBUS", "", &toggle); code != http.StatusOK {
		t.Fatalf("watch status %d", code)
	}
	if !toggle.Watched || toggle.Symbol != "NIMBUS" {
		t.Fatalf("toggle result wrong: %+v", toggle)
	}

	var saved struct {
		Saved bool `json:"saved"`
		Bytes int  `json:"bytes"`
	}
	if code := postJSON(t, srv.URL+"/v1/admin/snapshot", "", &saved); code != http.StatusOK {
		t.Fatalf("snapshot status %d", code)
	}
	if !saved.Saved || saved.Bytes == 0 {
		t.Fatalf("snapshot result wrong: %+v", saved)
	}
}
