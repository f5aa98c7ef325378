package wishlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/watchlist/internal/metrics"
)

const (
	defaultUserAgent = "watchlist/1.0"
	maxPageBody      = 8 << 20

	// robotHeader is set by the source on anti-scraping challenge pages.
	robotHeader = "X-Robot-Check"
)

// HTTPSource implements Source against the JSON page API at
// GET {baseURL}/wishlists/{name}?page={n}.
type HTTPSource struct {
	baseURL     string
	userAgent   string
	client      *http.Client
	rateLimiter *RateLimiter
}

// HTTPOption configures the HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = hc
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithRateLimiter makes every Page call wait on r first.
func WithRateLimiter(r *RateLimiter) HTTPOption {
	return func(s *HTTPSource) {
		s.rateLimiter = r
	}
}

// NewHTTPSource creates a new page API client.
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page fetches one page of the named wishlist.
func (s *HTTPSource) Page(ctx context.Context, name string, page int) (*Page, error) {
	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.SourceRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(name, page), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", page, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w", page, err)
	}

	if isRobotCheck(resp, body) {
		metrics.RobotDetectionsTotal.Inc()
		return nil, fmt.Errorf("%w on page %d (status %d)", ErrRobotDetected, page, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("source error (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("parsing page %d: %w", page, err)
	}
	if p.Number == 0 {
		p.Number = page
	}
	for i := range p.Items {
		p.Items[i].Page = p.Number
	}

	metrics.SourcePagesTotal.Inc()
	return &p, nil
}

func (s *HTTPSource) pageURL(name string, page int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return s.baseURL + "/wishlists/" + url.PathEscape(name) + "?" + params.Encode()
}

// isRobotCheck reports whether resp is an anti-scraping challenge: a 503, an
// explicit robot header, or an HTML page mentioning a captcha.
func isRobotCheck(resp *http.Response, body []byte) bool {
	if resp.StatusCode == http.StatusServiceUnavailable {
		return true
	}
	if resp.Header.Get(robotHeader) != "" {
		return true
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/html" {
		return bytes.Contains(bytes.ToLower(body), []byte("captcha"))
	}
	return false
}
