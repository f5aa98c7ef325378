// Package main implements a mock wishlist page API for local development.
// It serves canned wishlists from a JSON fixture, split into pages, and can
// simulate price drift and robot checks so every digest section shows up
// without a real store front.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

type fixture struct {
	Wishlists map[string][]json.RawMessage `json:"wishlists"`
}

type pageResponse struct {
	Page    int               `json:"page"`
	HasMore bool              `json:"has_more"`
	Items   []json.RawMessage `json:"items"`
}

// serverOptions shapes the served pages.
type serverOptions struct {
	pageSize   int
	drift      float64 // max fractional price change per request, 0 disables
	robotEvery int64   // answer every Nth request with a captcha, 0 disables
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/wishlists.json", "path to wishlists fixture")
	pageSize := flag.Int("page-size", 2, "items per page")
	drift := flag.Float64("drift", 0, "max fractional price change per request (e.g. 0.2)")
	robotEvery := flag.Int64("robot-every", 0, "answer every Nth request with a robot check")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "wishlists", len(fx.Wishlists))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /wishlists/{name}", pageHandler(logger, fx, serverOptions{
		pageSize:   *pageSize,
		drift:      *drift,
		robotEvery: *robotEvery,
	}))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock wishlist server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

const captchaPage = `<html><body><form action="/errors/validateCaptcha">` +
	`Type the characters you see in this image</form></body></html>`

func pageHandler(logger *slog.Logger, fx *fixture, opts serverOptions) http.HandlerFunc {
	if opts.pageSize < 1 {
		opts.pageSize = 1
	}
	var requests atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if opts.robotEvery > 0 && n%opts.robotEvery == 0 {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusServiceUnavailable)
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			w.Write([]byte(captchaPage))
			logger.Warn("served robot check", "request", n)
			return
		}

		name := r.PathValue("name")
		items, ok := fx.Wishlists[name]
		if !ok {
			http.Error(w, `{"error":"wishlist not found"}`, http.StatusNotFound)
			return
		}

		page := 1
		if s := r.URL.Query().Get("page"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 {
				http.Error(w, `{"error":"invalid page"}`, http.StatusBadRequest)
				return
			}
			page = v
		}

		start := min((page-1)*opts.pageSize, len(items))
		end := min(start+opts.pageSize, len(items))

		resp := pageResponse{
			Page:    page,
			HasMore: end < len(items),
			Items:   make([]json.RawMessage, 0, end-start),
		}
		for _, raw := range items[start:end] {
			resp.Items = append(resp.Items, driftPrice(raw, opts.drift))
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(resp)
		logger.Info("page", "wishlist", name, "page", page, "returned", len(resp.Items), "has_more", resp.HasMore)
	}
}

// driftPrice moves a positive price by up to ±drift of its value. Items
// without a price and malformed fixtures are returned unchanged.
func driftPrice(raw json.RawMessage, drift float64) json.RawMessage {
	if drift <= 0 {
		return raw
	}

	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return raw
	}
	price, ok := item["price"].(float64)
	if !ok || price <= 0 {
		return raw
	}

	factor := 1 + (rand.Float64()*2-1)*drift //nolint:gosec // mock data, not security sensitive
	item["price"] = math.Max(0.01, math.Round(price*factor*100)/100)

	out, err := json.Marshal(item)
	if err != nil {
		return raw
	}
	return out
}
