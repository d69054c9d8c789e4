// Package imf adapts the IMF DataMapper API. The catalog comes back in a
// single call; per-indicator values are nested values[code][country].
package imf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AscendedCode/ecuador-macro/internal/config"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

// Source implements provider.Source for the IMF DataMapper.
type Source struct {
	baseURL string
	country string
	client  *fetch.Client
}

// New creates an IMF DataMapper source for the given country.
func New(cfg config.IMFConfig, country string, client *fetch.Client) *Source {
	return &Source{
		baseURL: cfg.BaseURL,
		country: country,
		client:  client,
	}
}

// Name implements provider.Source.
func (s *Source) Name() string { return "imf" }

// Indicators returns the full DataMapper catalog as {code: label}.
func (s *Source) Indicators(ctx context.Context) (map[string]string, error) {
	var payload struct {
		Indicators map[string]struct {
			Label string `json:"label"`
		} `json:"indicators"`
	}
	url := fmt.Sprintf("%s/indicators", s.baseURL)
	if err := s.client.GetJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}

	indicators := make(map[string]string, len(payload.Indicators))
	for code, meta := range payload.Indicators {
		label := meta.Label
		if label == "" {
			label = code
		}
		indicators[code] = label
	}
	return indicators, nil
}

// Series fetches one indicator for the target country. A response without
// the values[code][country] path is the valid "no data" state.
func (s *Source) Series(ctx context.Context, code string) (provider.Series, error) {
	var payload struct {
		Values map[string]map[string]map[string]any `json:"values"`
	}
	url := fmt.Sprintf("%s/%s/%s", s.baseURL, code, s.country)
	if err := s.client.GetJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}

	series := provider.Series{}
	for period, raw := range payload.Values[code][s.country] {
		value, ok := toFloat(raw)
		if !ok {
			continue
		}
		series[period] = value
	}
	return series, nil
}

// Describe implements provider.Source. The DataMapper exposes nothing
// beyond the catalog label, so the record carries no extra fields.
func (s *Source) Describe(_ context.Context, code, label string, _ provider.Series) provider.Metadata {
	return provider.Metadata{Code: code, Label: label}
}

// toFloat coerces a decoded JSON value into a float64.
func toFloat(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

var _ provider.Source = (*Source)(nil)
