package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

func snapshot(title string, price int64) *Snapshot {
	return &Snapshot{
		Newest: domain.PricePoint{
			Identity:   title,
			Price:      price,
			Metadata:   domain.Metadata{Title: title, URL: "https://shop.example.com/" + title},
			ObservedAt: seedBase.Add(1000 * time.Hour),
		},
	}
}

func withLast(s *Snapshot, price int64) *Snapshot {
	s.Last = &domain.PricePoint{Identity: s.Newest.Identity, Price: price, ObservedAt: seedBase}
	return s
}

func withCheapest(s *Snapshot, price int64, at time.Time) *Snapshot {
	s.Cheapest = &domain.PricePoint{Identity: s.Newest.Identity, Price: price, ObservedAt: at}
	return s
}

// order returns the positions of each needle in body, failing if any is
// missing.
func order(t *testing.T, body string, needles ...string) []int {
	t.Helper()
	idx := make([]int, len(needles))
	for i, n := range needles {
		idx[i] = strings.Index(body, n)
		require.GreaterOrEqual(t, idx[i], 0, "missing %q", n)
	}
	return idx
}

func assertIncreasing(t *testing.T, idx []int) {
	t.Helper()
	for i := 1; i < len(idx); i++ {
		assert.Less(t, idx[i-1], idx[i])
	}
}

func TestDigest_Subject(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	d.Record(withLast(snapshot("a", 1), 5), domain.CategoryCheaper)
	d.Record(withLast(snapshot("b", 9), 5), domain.CategoryRicher)
	d.Record(withLast(snapshot("c", 7), 5), domain.CategoryRicher)

	assert.Equal(t, "1 down, 0 cheapest, 2 up, [wishlist birthday]", d.Subject())

	d.SetItemCount(42)
	assert.Equal(t, "1 down, 0 cheapest, 2 up, 42 total [wishlist birthday]", d.Subject())
}

func TestDigest_Record(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category       domain.Category
		wantKept       bool
		wantReportable bool
	}{
		{category: domain.CategoryNew},
		{category: domain.CategoryUnchanged},
		{category: domain.CategoryCheaper, wantKept: true, wantReportable: true},
		{category: domain.CategoryRicher, wantKept: true, wantReportable: true},
		{category: domain.CategoryCheapest, wantKept: true, wantReportable: true},
		{category: domain.CategoryOutOfStock, wantKept: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			t.Parallel()

			d := NewDigest("birthday")
			assert.Equal(t, tt.wantKept, d.Record(withLast(snapshot("a", 1), 5), tt.category))
			assert.Equal(t, tt.wantReportable, d.Reportable())
			if tt.wantKept {
				assert.Equal(t, 1, d.Changes())
			} else {
				assert.Zero(t, d.Changes())
			}
		})
	}
}

func TestDigest_CheaperOrdering(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	for _, p := range []struct {
		title string
		price int64
	}{
		{"hundred", 100},
		{"one", 1},
		{"ten", 10},
	} {
		d.Record(withLast(snapshot(p.title, p.price), 1000), domain.CategoryCheaper)
	}

	body, err := d.BodyHTML()
	require.NoError(t, err)
	assertIncreasing(t, order(t, body, ">one<", ">ten<", ">hundred<"))
}

func TestDigest_EqualKeysKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	for _, title := range []string{"first", "second", "third"} {
		d.Record(withLast(snapshot(title, 500), 100), domain.CategoryRicher)
	}

	body, err := d.BodyHTML()
	require.NoError(t, err)
	assertIncreasing(t, order(t, body, ">first<", ">second<", ">third<"))
}

func TestDigest_CheapestOrderedByFirstSeenLow(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	d.Record(withCheapest(snapshot("late", 5), 5, seedBase.Add(48*time.Hour)), domain.CategoryCheapest)
	d.Record(snapshot("fresh", 1), domain.CategoryCheapest)
	d.Record(withCheapest(snapshot("early", 9), 9, seedBase), domain.CategoryCheapest)

	body, err := d.BodyHTML()
	require.NoError(t, err)
	assertIncreasing(t, order(t, body, ">early<", ">late<", ">fresh<"))
}

func TestDigest_OutOfStockOrderedByLastPrice(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	d.Record(withLast(snapshot("pricey", 0), 900), domain.CategoryOutOfStock)
	d.Record(snapshot("unknown", 0), domain.CategoryOutOfStock)
	d.Record(withLast(snapshot("cheap", 0), 100), domain.CategoryOutOfStock)

	assert.False(t, d.Reportable(), "out of stock alone is not reportable")

	body, err := d.BodyHTML()
	require.NoError(t, err)
	assertIncreasing(t, order(t, body, ">unknown<", ">cheap<", ">pricey<"))
}

func TestDigest_BodySections(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	d.Record(withLast(snapshot("gone", 0), 100), domain.CategoryOutOfStock)
	d.Record(withLast(snapshot("down", 50), 100), domain.CategoryCheaper)
	d.Record(withLast(snapshot("up", 150), 100), domain.CategoryRicher)

	body, err := d.BodyHTML()
	require.NoError(t, err)

	assertIncreasing(t, order(t, body,
		"<h2>Lower Priced</h2>",
		"<h2>Higher Priced</h2>",
		"<h2>Out of Stock</h2>",
	))
	assert.NotContains(t, body, "<h2>Cheapest</h2>")
	assert.Equal(t, 1, strings.Count(body, "<table>"), "only price drops get the detail card")
}

func TestDigest_EmptyBody(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	body, err := d.BodyHTML()
	require.NoError(t, err)
	assert.Empty(t, body)

	text, err := d.BodyText()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDigest_Message(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	d.SetItemCount(3)
	d.Record(withLast(snapshot("Widget", 1234), 2000), domain.CategoryCheaper)

	msg, err := d.Message()
	require.NoError(t, err)
	assert.Equal(t, "1 down, 0 cheapest, 0 up, 3 total [wishlist birthday]", msg.Subject)
	assert.Contains(t, msg.HTML, "<h2>Lower Priced</h2>")
	assert.Contains(t, msg.Text, "Lower Priced Widget $12.34 , previously was $20.00")
	assert.NotContains(t, msg.Text, "<")
}

func TestDigest_ErrorDigest(t *testing.T) {
	t.Parallel()

	d := NewDigest("birthday")
	_, ok := d.ErrorDigest()
	assert.False(t, ok)

	d.AddError(ItemError{Message: "first failed", Stack: "stack one"})
	d.AddError(ItemError{Message: "second failed", Stack: "stack two"})

	msg, ok := d.ErrorDigest()
	require.True(t, ok)
	assert.Equal(t, "2 errors raised", msg.Subject)
	assert.Equal(t, "first failed\nstack one\n\nsecond failed\nstack two\n", msg.Text)
	assert.Empty(t, msg.HTML)
	assert.Len(t, d.Errors(), 2)
	assert.False(t, d.Reportable(), "errors do not make the success digest reportable")
}
