package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// ExchangeRates resolves the EUR conversion rate for a currency on a date.
// The upstream value expresses how much of the currency one EUR buys, so
// the stored rate is the inverse, rounded to 6 decimal places. Parsed
// rates are cached by (currency, date).
type ExchangeRates struct {
	source ports.ExchangeRateSource
	cache  ports.RateCache
	log    zerolog.Logger
}

func NewExchangeRates(source ports.ExchangeRateSource, cache ports.RateCache, log zerolog.Logger) *ExchangeRates {
	return &ExchangeRates{source: source, cache: cache, log: log}
}

// Rate returns the rate for the currency on the date. ok is false when no
// rate applies (EUR, or missing inputs).
func (s *ExchangeRates) Rate(ctx context.Context, accessToken, date, currency string) (rate float64, ok bool, err error) {
	if date == "" || currency == "" || currency == "EUR" {
		return 0, false, nil
	}

	if cached, hit, err := s.cache.Get(ctx, currency, date); err != nil {
		s.log.Warn().Err(err).Msg("rate cache read failed")
	} else if hit {
		return cached, true, nil
	}

	raw, err := s.source.FetchRate(ctx, accessToken, date, currency)
	if err != nil {
		s.log.Error().Err(err).Str("currency", currency).Str("date", date).Msg("exchange rate fetch failed")
		return 0, false, err
	}

	value, err := ParseDecimal(raw)
	if err != nil || value <= 0 {
		s.log.Warn().Str("currency", currency).Str("date", date).Str("raw", raw).Msg("no usable exchange rate in response")
		return 0, false, domain.ErrRateUnavailable
	}

	rate = math.Round(1/value*1e6) / 1e6

	if err := s.cache.Set(ctx, currency, date, rate); err != nil {
		s.log.Warn().Err(err).Msg("rate cache write failed")
	}
	return rate, true, nil
}

// ParseDecimal parses a decimal string that may use a comma as the decimal
// separator, as some upstream locales do.
func ParseDecimal(value string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(value), ",", ".", 1), 64)
}
