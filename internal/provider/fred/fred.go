// Package fred adapts the FRED API (the St. Louis Fed data aggregator).
// Indicators are discovered by crawling the Ecuador category tree and
// merged with a curated list of US series relevant to a dollarised economy.
package fred

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/AscendedCode/ecuador-macro/internal/config"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

// ErrMissingAPIKey is returned when no FRED API key is configured.
var ErrMissingAPIKey = errors.New("fred: api key is required (ECUADOR_FRED_API_KEY)")

const (
	sourceEcuador = "Ecuador (FRED)"
	sourceUS      = "US Monetary/Financial (FRED)"

	seriesPageLimit = 1000
	notesMaxLen     = 200
)

// Source implements provider.Source for FRED.
type Source struct {
	baseURL        string
	apiKey         string
	rootCategoryID int
	client         *fetch.Client
	logger         *slog.Logger

	seriesPacer   fetch.Pacer
	childrenPacer fetch.Pacer

	// sourceLabel records, per series ID, which discovery path produced
	// it; filled by Indicators and read by Describe.
	sourceLabel map[string]string
}

// New creates a FRED source. The pacers throttle the two crawl calls per
// category node.
func New(cfg config.FREDConfig, client *fetch.Client, logger *slog.Logger, seriesPacer, childrenPacer fetch.Pacer) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if seriesPacer == nil {
		seriesPacer = fetch.NopPacer{}
	}
	if childrenPacer == nil {
		childrenPacer = fetch.NopPacer{}
	}
	return &Source{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		rootCategoryID: cfg.RootCategoryID,
		client:         client,
		logger:         logger,
		seriesPacer:    seriesPacer,
		childrenPacer:  childrenPacer,
		sourceLabel:    make(map[string]string),
	}
}

// Name implements provider.Source.
func (s *Source) Name() string { return "fred" }

// Indicators crawls the configured category tree and merges the curated US
// dollarisation series. A curated ID that also appears in the tree keeps
// the curated attribution.
func (s *Source) Indicators(ctx context.Context) (map[string]string, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	indicators := s.crawl(ctx, s.rootCategoryID)
	for id := range indicators {
		s.sourceLabel[id] = sourceEcuador
	}
	s.logger.Info("category crawl complete",
		slog.Int("root_category", s.rootCategoryID),
		slog.Int("series_found", len(indicators)))

	for id, label := range usDollarisationSeries {
		indicators[id] = label
		s.sourceLabel[id] = sourceUS
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return indicators, nil
}

// Series fetches all observations for one series ID. FRED renders missing
// values as "."; those are dropped.
func (s *Source) Series(ctx context.Context, code string) (provider.Series, error) {
	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}

	params := s.params()
	params.Set("series_id", code)
	if err := s.client.GetJSON(ctx, s.baseURL+"/series/observations", params, &payload); err != nil {
		return nil, err
	}

	series := provider.Series{}
	for _, obs := range payload.Observations {
		if obs.Date == "" || obs.Value == "" || obs.Value == "." {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		series[obs.Date] = value
	}
	return series, nil
}

// Describe fetches the series info record. When the call fails the record
// degrades to the attribution source only, keeping the field set fixed.
func (s *Source) Describe(ctx context.Context, code, label string, _ provider.Series) provider.Metadata {
	fields := []provider.Field{
		{Key: "title"},
		{Key: "frequency"},
		{Key: "units"},
		{Key: "seasonal_adjustment"},
		{Key: "last_updated"},
		{Key: "observation_start"},
		{Key: "observation_end"},
		{Key: "source", Value: s.sourceLabel[code]},
		{Key: "notes"},
	}

	var payload struct {
		Seriess []struct {
			Title            string `json:"title"`
			FrequencyShort   string `json:"frequency_short"`
			UnitsShort       string `json:"units_short"`
			SeasonalAdjShort string `json:"seasonal_adjustment_short"`
			LastUpdated      string `json:"last_updated"`
			ObservationStart string `json:"observation_start"`
			ObservationEnd   string `json:"observation_end"`
			Notes            string `json:"notes"`
		} `json:"seriess"`
	}

	params := s.params()
	params.Set("series_id", code)
	err := s.client.GetJSON(ctx, s.baseURL+"/series", params, &payload)
	if err != nil || len(payload.Seriess) == 0 {
		s.logger.Warn("series info unavailable, writing minimal metadata",
			slog.String("series_id", code))
		return provider.Metadata{Code: code, Label: label, Fields: fields}
	}

	info := payload.Seriess[0]
	notes := info.Notes
	if len(notes) > notesMaxLen {
		notes = notes[:notesMaxLen]
	}
	fields[0].Value = info.Title
	fields[1].Value = info.FrequencyShort
	fields[2].Value = info.UnitsShort
	fields[3].Value = info.SeasonalAdjShort
	fields[4].Value = info.LastUpdated
	fields[5].Value = info.ObservationStart
	fields[6].Value = info.ObservationEnd
	fields[8].Value = notes

	return provider.Metadata{Code: code, Label: label, Fields: fields}
}

// params returns the base query parameters every FRED call carries.
func (s *Source) params() url.Values {
	return url.Values{
		"api_key":   {s.apiKey},
		"file_type": {"json"},
	}
}

func (s *Source) categoryParams(categoryID int) url.Values {
	params := s.params()
	params.Set("category_id", strconv.Itoa(categoryID))
	return params
}

var _ provider.Source = (*Source)(nil)
