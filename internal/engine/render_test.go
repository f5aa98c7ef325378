package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

func TestMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{99, "$0.99"},
		{1234, "$12.34"},
		{100000, "$1000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, money(tt.cents))
		})
	}
}

func detail(t *testing.T, s *Snapshot) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, renderDetail(&b, s))
	return b.String()
}

func summary(t *testing.T, s *Snapshot) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, renderSummary(&b, s))
	return b.String()
}

func TestRenderDetail_TitleColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cheapest bool
		richest  bool
		noURL    bool
		want     string
	}{
		{
			name:     "cheapest is green",
			cheapest: true,
			want:     `<h3 style="color:green"><a style="color:green" href="https://shop.example.com/Widget">Widget</a></h3>`,
		},
		{
			name:    "richest is red",
			richest: true,
			want:    `<h3 style="color:red"><a style="color:red" href="https://shop.example.com/Widget">Widget</a></h3>`,
		},
		{name: "cheapest wins over richest", cheapest: true, richest: true, want: `<h3 style="color:green">`},
		{name: "neutral", want: `<h3><a href="https://shop.example.com/Widget">Widget</a></h3>`},
		{name: "cheapest without a link", cheapest: true, noURL: true, want: `<h3 style="color:green">Widget</h3>`},
		{name: "richest without a link", richest: true, noURL: true, want: `<h3 style="color:red">Widget</h3>`},
		{name: "neutral without a link", noURL: true, want: `<h3>Widget</h3>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := withLast(snapshot("Widget", 1234), 2000)
			s.IsCheapest = tt.cheapest
			s.IsRichest = tt.richest
			if tt.noURL {
				s.Newest.Metadata.URL = ""
			}

			assert.Contains(t, detail(t, s), tt.want)
		})
	}
}

func TestRenderDetail_FullCard(t *testing.T) {
	t.Parallel()

	added := time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC)
	s := withLast(snapshot("Widget", 1234), 2000)
	s.Newest.Metadata.ImageURL = "https://img.example.com/w.jpg"
	s.Newest.Metadata.PageURL = "https://wishlists.example.com/birthday?page=2"
	s.Newest.Metadata.Added = &added
	s.Newest.Metadata.Comment = "for the kitchen"
	s.Cheapest = &domain.PricePoint{Price: 999, ObservedAt: seedBase}
	s.CheapestCount = 3
	s.Richest = &domain.PricePoint{Price: 2500, ObservedAt: seedBase.Add(72 * time.Hour)}
	s.RichestCount = 1

	out := detail(t, s)

	assertIncreasing(t, order(t, out,
		`<a href="https://shop.example.com/Widget"><img src="https://img.example.com/w.jpg"></a>`,
		`<p><b>$12.34</b>, previously was <b>$20.00</b></p>`,
		`<p>Lowest price was <b>$9.99</b> on 2024-01-01 (3 times total)</p>`,
		`<p>Highest price was <b>$25.00</b> on 2024-01-04 (1 times total)</p>`,
		`<p><a href="https://wishlists.example.com/birthday?page=2">page</a>, added 2024-02-14</p>`,
		`<p>for the kitchen</p>`,
		`<hr>`,
	))
	assert.NotContains(t, out, "digital")
}

func TestRenderDetail_MinimalMetadata(t *testing.T) {
	t.Parallel()

	s := snapshot("B000123", 500)
	s.Newest.Metadata = domain.Metadata{Digital: true}

	out := detail(t, s)
	assert.Contains(t, out, "<h3>B000123 (digital)</h3>", "falls back to identity without a link")
	assert.Contains(t, out, "<p>This is a digital item</p>")
	assert.Contains(t, out, "<p><b>$5.00</b></p>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "previously")
	assert.NotContains(t, out, "Lowest price")
	assert.NotContains(t, out, ">page<")
}

func TestRenderDetail_EscapesText(t *testing.T) {
	t.Parallel()

	s := snapshot("Widget", 500)
	s.Newest.Metadata.Title = `<script>alert("x")</script>`
	s.Newest.Metadata.Comment = "Tom & Jerry"
	s.Newest.Metadata.URL = `javascript:alert(1)`

	out := detail(t, s)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Tom &amp; Jerry")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap *Snapshot
		want string
	}{
		{
			name: "bracketed by low and high",
			snap: func() *Snapshot {
				s := withLast(snapshot("Widget", 1500), 1000)
				s.Cheapest = &domain.PricePoint{Price: 900}
				s.Richest = &domain.PricePoint{Price: 2000}
				return s
			}(),
			want: `<p><a href="https://shop.example.com/Widget">Widget</a>: $9.00 - <b>$15.00</b> - $20.00</p>`,
		},
		{
			name: "last price only",
			snap: withLast(snapshot("Widget", 0), 1000),
			want: `<p><a href="https://shop.example.com/Widget">Widget</a>: was $10.00, now <b>$0.00</b></p>`,
		},
		{
			name: "no history",
			snap: snapshot("Widget", 700),
			want: `<p><a href="https://shop.example.com/Widget">Widget</a>: <b>$7.00</b></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, summary(t, tt.snap))
		})
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hello", want: "hello"},
		{
			name: "nested markup",
			in:   "<h2>Lower Priced</h2>\n<table><tr><td><h3><a href=\"x\">Widget</a></h3>\n<p><b>$1.00</b>, previously was <b>$2.00</b></p></td></tr></table>",
			want: "Lower Priced Widget $1.00 , previously was $2.00",
		},
		{name: "collapses whitespace", in: "<p>  a \n\t b  </p>", want: "a b"},
		{name: "unescapes entities", in: "<p>Tom &amp; Jerry</p>", want: "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, htmlToText(tt.in))
		})
	}
}
