package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestFixture(t *testing.T) *fixture {
	t.Helper()
	fx, err := loadFixture(filepath.Join("testdata", "wishlists.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return fx
}

func serve(t *testing.T, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wishlists/{name}", h)
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp pageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestLoadFixture(t *testing.T) {
	fx := loadTestFixture(t)
	if len(fx.Wishlists["birthday"]) != 5 {
		t.Errorf("birthday items=%d, want 5", len(fx.Wishlists["birthday"]))
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := loadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestPageHandler_Pages(t *testing.T) {
	h := pageHandler(testLogger(), loadTestFixture(t), serverOptions{pageSize: 2})

	tests := []struct {
		path      string
		wantPage  int
		wantItems int
		wantMore  bool
	}{
		{path: "/wishlists/birthday", wantPage: 1, wantItems: 2, wantMore: true},
		{path: "/wishlists/birthday?page=2", wantPage: 2, wantItems: 2, wantMore: true},
		{path: "/wishlists/birthday?page=3", wantPage: 3, wantItems: 1, wantMore: false},
		{path: "/wishlists/birthday?page=9", wantPage: 9, wantItems: 0, wantMore: false},
		{path: "/wishlists/holiday", wantPage: 1, wantItems: 1, wantMore: false},
	}

	for _, tt := range tests {
		resp := decodePage(t, serve(t, h, tt.path))
		if resp.Page != tt.wantPage {
			t.Errorf("%s: page=%d, want %d", tt.path, resp.Page, tt.wantPage)
		}
		if len(resp.Items) != tt.wantItems {
			t.Errorf("%s: items=%d, want %d", tt.path, len(resp.Items), tt.wantItems)
		}
		if resp.HasMore != tt.wantMore {
			t.Errorf("%s: has_more=%v, want %v", tt.path, resp.HasMore, tt.wantMore)
		}
		if resp.Items == nil {
			t.Errorf("%s: items encoded as null", tt.path)
		}
	}
}

func TestPageHandler_UnknownWishlist(t *testing.T) {
	h := pageHandler(testLogger(), loadTestFixture(t), serverOptions{pageSize: 2})
	w := serve(t, h, "/wishlists/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestPageHandler_InvalidPage(t *testing.T) {
	h := pageHandler(testLogger(), loadTestFixture(t), serverOptions{pageSize: 2})
	for _, path := range []string{"/wishlists/birthday?page=0", "/wishlists/birthday?page=x"} {
		if w := serve(t, h, path); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestPageHandler_RobotEvery(t *testing.T) {
	h := pageHandler(testLogger(), loadTestFixture(t), serverOptions{pageSize: 2, robotEvery: 2})

	if w := serve(t, h, "/wishlists/birthday"); w.Code != http.StatusOK {
		t.Fatalf("first request status=%d, want %d", w.Code, http.StatusOK)
	}
	w := serve(t, h, "/wishlists/birthday")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("second request status=%d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(w.Body.String(), "Captcha") {
		t.Error("expected captcha page body")
	}
}

func TestDriftPrice(t *testing.T) {
	raw := json.RawMessage(`{"uuid":"a","price":100,"priority":"high"}`)

	if got := driftPrice(raw, 0); string(got) != string(raw) {
		t.Errorf("drift 0 changed item: %s", got)
	}

	for range 50 {
		var item map[string]any
		if err := json.Unmarshal(driftPrice(raw, 0.2), &item); err != nil {
			t.Fatalf("decoding drifted item: %v", err)
		}
		price, _ := item["price"].(float64)
		if price < 80 || price > 120 {
			t.Fatalf("price=%v outside ±20%%", price)
		}
		if item["priority"] != "high" {
			t.Fatalf("extra keys must survive drift, got %v", item)
		}
	}

	noPrice := json.RawMessage(`{"uuid":"b","price":null}`)
	if got := driftPrice(noPrice, 0.5); string(got) != string(noPrice) {
		t.Errorf("null price changed: %s", got)
	}
}
