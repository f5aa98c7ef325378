package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidPrice is returned for negative or unparseable prices.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrMissingIdentity is returned when an observation has no identity.
	ErrMissingIdentity = errors.New("missing identity")
)

// NormalizePrice converts a price to cents. Integers are already cents and
// pass through; floats are major currency units, multiplied by 100 and
// truncated toward zero. Strings and json.Number follow the same rule
// depending on whether they contain a decimal point. Nil is zero, which
// means the item is unavailable.
func NormalizePrice(v any) (int64, error) {
	var cents int64

	switch p := v.(type) {
	case nil:
		return 0, nil
	case int:
		cents = int64(p)
	case int32:
		cents = int64(p)
	case int64:
		cents = p
	case uint:
		cents = int64(p) //nolint:gosec // prices never approach the overflow range
	case uint32:
		cents = int64(p)
	case float32:
		return floatCents(float64(p))
	case float64:
		return floatCents(p)
	case *float64:
		if p == nil {
			return 0, nil
		}
		return floatCents(*p)
	case json.Number:
		return NormalizePrice(string(p))
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(p), "$")
		if s == "" {
			return 0, nil
		}
		if strings.ContainsAny(s, ".eE") {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, p)
			}
			return floatCents(f)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, p)
		}
		cents = n
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidPrice, v)
	}

	if cents < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidPrice, cents)
	}
	return cents, nil
}

func floatCents(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, f)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %v is negative", ErrInvalidPrice, f)
	}
	return int64(f * 100), nil
}

// NewPricePoint builds a normalized observation stamped with the current time.
// An empty identity or nil price is backfilled from md.Extra ("uuid" or
// "identity", and "price"); explicit arguments win over metadata.
func NewPricePoint(identity string, price any, md Metadata) (*PricePoint, error) {
	return newPricePointAt(identity, price, md, time.Now().UTC())
}

func newPricePointAt(identity string, price any, md Metadata, at time.Time) (*PricePoint, error) {
	if identity == "" {
		identity = extraString(md.Extra, "uuid", "identity")
	}
	if price == nil && md.Extra != nil {
		price = md.Extra["price"]
	}

	cents, err := NormalizePrice(price)
	if err != nil {
		return nil, err
	}

	if identity == "" {
		return nil, ErrMissingIdentity
	}

	return &PricePoint{
		Identity:   identity,
		Price:      cents,
		Metadata:   md,
		ObservedAt: at,
	}, nil
}

func extraString(extra map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := extra[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
