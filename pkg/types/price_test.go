package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   any
		want    int64
		wantErr bool
	}{
		{name: "float dollars to cents", input: 12.34, want: 1234},
		{name: "int passes through as cents", input: 1256, want: 1256},
		{name: "int64 passes through", input: int64(999), want: 999},
		{name: "float truncates toward zero", input: 17.149, want: 1714},
		{name: "zero means unavailable", input: 0, want: 0},
		{name: "zero float", input: 0.0, want: 0},
		{name: "nil is zero", input: nil, want: 0},
		{name: "json number decimal", input: json.Number("45.99"), want: 4599},
		{name: "json number integer", input: json.Number("4599"), want: 4599},
		{name: "string with dollar sign", input: "$10.00", want: 1000},
		{name: "empty string is zero", input: "", want: 0},
		{name: "negative int", input: -1, wantErr: true},
		{name: "negative float", input: -0.5, wantErr: true},
		{name: "garbage string", input: "ten", wantErr: true},
		{name: "unsupported type", input: []int{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizePrice(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPricePoint(t *testing.T) {
	t.Parallel()

	t.Run("explicit arguments", func(t *testing.T) {
		t.Parallel()

		p, err := NewPricePoint("B000123", 17.14, Metadata{Title: "Widget"})
		require.NoError(t, err)
		assert.Equal(t, "B000123", p.Identity)
		assert.Equal(t, int64(1714), p.Price)
		assert.Equal(t, "Widget", p.Metadata.Title)
		assert.False(t, p.ObservedAt.IsZero())
		assert.Zero(t, p.Seq)
	})

	t.Run("backfills identity and price from metadata", func(t *testing.T) {
		t.Parallel()

		md := Metadata{Extra: map[string]any{"uuid": "B000456", "price": 9.99}}
		p, err := NewPricePoint("", nil, md)
		require.NoError(t, err)
		assert.Equal(t, "B000456", p.Identity)
		assert.Equal(t, int64(999), p.Price)
	})

	t.Run("explicit arguments win over metadata", func(t *testing.T) {
		t.Parallel()

		md := Metadata{Extra: map[string]any{"uuid": "from-meta", "price": 1.00}}
		p, err := NewPricePoint("explicit", 500, md)
		require.NoError(t, err)
		assert.Equal(t, "explicit", p.Identity)
		assert.Equal(t, int64(500), p.Price)
	})

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()

		_, err := NewPricePoint("", 1.00, Metadata{})
		assert.ErrorIs(t, err, ErrMissingIdentity)
	})

	t.Run("negative price", func(t *testing.T) {
		t.Parallel()

		_, err := NewPricePoint("B000789", -3, Metadata{})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("observation time is fixed at construction", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		p, err := newPricePointAt("B1", 1, Metadata{}, at)
		require.NoError(t, err)
		assert.Equal(t, at, p.ObservedAt)
	})
}

func TestCategory_Persisted(t *testing.T) {
	t.Parallel()

	assert.True(t, CategoryNew.Persisted())
	assert.True(t, CategoryRicher.Persisted())
	assert.True(t, CategoryCheaper.Persisted())
	assert.False(t, CategoryCheapest.Persisted())
	assert.False(t, CategoryOutOfStock.Persisted())
	assert.False(t, CategoryUnchanged.Persisted())
}

func TestPricePoint_Dollars(t *testing.T) {
	t.Parallel()

	p := PricePoint{Price: 4599}
	assert.InDelta(t, 45.99, p.Dollars(), 0.0001)
}
