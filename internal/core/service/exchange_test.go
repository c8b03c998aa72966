package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
)

type stubRateSource struct {
	calls int
	raw   string
	err   error
}

func (s *stubRateSource) FetchRate(_ context.Context, accessToken, date, currency string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.raw, nil
}

type memRateCache struct {
	values map[string]float64
	getErr error
	setErr error
}

func newMemRateCache() *memRateCache {
	return &memRateCache{values: make(map[string]float64)}
}

func (c *memRateCache) Get(_ context.Context, currency, date string) (float64, bool, error) {
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	v, ok := c.values[currency+":"+date]
	return v, ok, nil
}

func (c *memRateCache) Set(_ context.Context, currency, date string, rate float64) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[currency+":"+date] = rate
	return nil
}

func TestExchangeRates_CommaDecimalInverted(t *testing.T) {
	source := &stubRateSource{raw: "1,0735"}
	rates := NewExchangeRates(source, newMemRateCache(), zerolog.Nop())

	rate, ok, err := rates.Rate(context.Background(), "token", "2026-08-01", "CHF")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if !ok {
		t.Fatalf("expected a rate")
	}
	want := math.Round(1/1.0735*1e6) / 1e6
	if rate != want {
		t.Fatalf("expected %v, got %v", want, rate)
	}
	if rate != 0.931532 {
		t.Fatalf("expected 0.931532 for 1,0735, got %v", rate)
	}
}

func TestExchangeRates_EURShortCircuits(t *testing.T) {
	source := &stubRateSource{raw: "1"}
	rates := NewExchangeRates(source, newMemRateCache(), zerolog.Nop())

	for _, tc := range []struct{ date, currency string }{
		{"2026-08-01", "EUR"},
		{"", "CHF"},
		{"2026-08-01", ""},
	} {
		rate, ok, err := rates.Rate(context.Background(), "token", tc.date, tc.currency)
		if err != nil || ok || rate != 0 {
			t.Fatalf("expected no rate for %+v, got (%v,%v,%v)", tc, rate, ok, err)
		}
	}
	if source.calls != 0 {
		t.Fatalf("no upstream call expected")
	}
}

func TestExchangeRates_CacheHitSkipsSource(t *testing.T) {
	source := &stubRateSource{raw: "2,0"}
	cache := newMemRateCache()
	rates := NewExchangeRates(source, cache, zerolog.Nop())
	ctx := context.Background()

	first, _, err := rates.Rate(ctx, "token", "2026-08-01", "USD")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	second, ok, err := rates.Rate(ctx, "token", "2026-08-01", "USD")
	if err != nil || !ok {
		t.Fatalf("cached rate: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned different value: %v vs %v", first, second)
	}
	if source.calls != 1 {
		t.Fatalf("expected exactly one upstream fetch, got %d", source.calls)
	}
}

func TestExchangeRates_UnusableValue(t *testing.T) {
	source := &stubRateSource{raw: "n/a"}
	rates := NewExchangeRates(source, newMemRateCache(), zerolog.Nop())

	_, _, err := rates.Rate(context.Background(), "token", "2026-08-01", "CHF")
	if !errors.Is(err, domain.ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestExchangeRates_CacheFailuresAreSoft(t *testing.T) {
	source := &stubRateSource{raw: "1,25"}
	cache := newMemRateCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	rates := NewExchangeRates(source, cache, zerolog.Nop())

	rate, ok, err := rates.Rate(context.Background(), "token", "2026-08-01", "USD")
	if err != nil || !ok {
		t.Fatalf("cache failure must not fail the lookup: %v", err)
	}
	if rate != 0.8 {
		t.Fatalf("expected 0.8, got %v", rate)
	}
}

func TestParseDecimal(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"1,0735", 1.0735},
		{"1.0735", 1.0735},
		{" 2,5 ", 2.5},
		{"100", 100},
	} {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %v, got %v", tc.in, tc.want, got)
		}
	}

	if _, err := ParseDecimal("abc"); err == nil {
		t.Fatalf("expected parse error")
	}
}
