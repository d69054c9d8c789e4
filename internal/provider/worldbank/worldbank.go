// Package worldbank adapts the World Bank v2 API. Every response is a
// two-element envelope [meta, records]; indicator enumeration is paginated.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AscendedCode/ecuador-macro/internal/config"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

// Source implements provider.Source for the World Development Indicators.
type Source struct {
	baseURL  string
	country  string
	sourceID int
	pageSize int
	client   *fetch.Client
	pager    fetch.Pacer

	// info caches descriptive attributes from the enumeration pass so
	// Describe needs no further API call.
	info map[string]indicatorInfo
}

type indicatorInfo struct {
	sourceOrg string
	topics    string
}

// pageMeta is the first element of the response envelope. The API renders
// these as numbers or numeric strings depending on the endpoint.
type pageMeta struct {
	Page  flexInt `json:"page"`
	Pages flexInt `json:"pages"`
	Total flexInt `json:"total"`
}

// flexInt decodes a JSON number or numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type indicatorRecord struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	SourceOrganization string `json:"sourceOrganization"`
	Topics             []struct {
		Value string `json:"value"`
	} `json:"topics"`
}

type observationRecord struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// New creates a World Bank source for the given country. pager throttles
// the page requests during enumeration.
func New(cfg config.WorldBankConfig, country string, client *fetch.Client, pager fetch.Pacer) *Source {
	if pager == nil {
		pager = fetch.NopPacer{}
	}
	return &Source{
		baseURL:  cfg.BaseURL,
		country:  country,
		sourceID: cfg.SourceID,
		pageSize: cfg.PageSize,
		client:   client,
		pager:    pager,
		info:     make(map[string]indicatorInfo),
	}
}

// Name implements provider.Source.
func (s *Source) Name() string { return "worldbank" }

// Indicators pages through the WDI indicator catalog until the reported
// page count is reached or a page comes back empty.
func (s *Source) Indicators(ctx context.Context) (map[string]string, error) {
	indicators := make(map[string]string)

	for page := 1; ; page++ {
		params := url.Values{
			"format":   {"json"},
			"source":   {strconv.Itoa(s.sourceID)},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(s.pageSize)},
		}

		var meta pageMeta
		var records []indicatorRecord
		if err := s.getEnvelope(ctx, s.baseURL+"/indicator", params, &meta, &records); err != nil {
			return nil, fmt.Errorf("indicator page %d: %w", page, err)
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			name := rec.Name
			if name == "" {
				name = rec.ID
			}
			indicators[rec.ID] = name

			topics := make([]string, 0, len(rec.Topics))
			for _, t := range rec.Topics {
				if v := strings.TrimSpace(t.Value); v != "" {
					topics = append(topics, v)
				}
			}
			s.info[rec.ID] = indicatorInfo{
				sourceOrg: rec.SourceOrganization,
				topics:    strings.Join(topics, ", "),
			}
		}

		if page >= int(meta.Pages) {
			break
		}
		if err := s.pager.Pace(ctx); err != nil {
			return nil, err
		}
	}

	return indicators, nil
}

// Series fetches all years of one indicator for the target country,
// skipping records with a null value.
func (s *Source) Series(ctx context.Context, code string) (provider.Series, error) {
	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s", s.baseURL, s.country, code)
	params := url.Values{
		"format":   {"json"},
		"per_page": {"10000"},
	}

	var meta pageMeta
	var records []observationRecord
	if err := s.getEnvelope(ctx, endpoint, params, &meta, &records); err != nil {
		return nil, err
	}

	series := provider.Series{}
	for _, rec := range records {
		if rec.Date == "" || rec.Value == nil {
			continue
		}
		series[rec.Date] = *rec.Value
	}
	return series, nil
}

// Describe implements provider.Source using the attributes cached during
// enumeration. The field set is fixed so metadata rows stay rectangular.
func (s *Source) Describe(_ context.Context, code, label string, _ provider.Series) provider.Metadata {
	info := s.info[code]
	return provider.Metadata{
		Code:  code,
		Label: label,
		Fields: []provider.Field{
			{Key: "source_org", Value: info.sourceOrg},
			{Key: "topics", Value: info.topics},
		},
	}
}

// getEnvelope fetches a [meta, records] response. Anything other than a
// two-element array is an unexpected shape and therefore a fetch failure.
func (s *Source) getEnvelope(ctx context.Context, endpoint string, params url.Values, meta any, records any) error {
	var envelope []json.RawMessage
	if err := s.client.GetJSON(ctx, endpoint, params, &envelope); err != nil {
		return err
	}
	if len(envelope) != 2 {
		return fmt.Errorf("unexpected response shape: %d element envelope", len(envelope))
	}
	if err := json.Unmarshal(envelope[0], meta); err != nil {
		return fmt.Errorf("decode envelope meta: %w", err)
	}
	// A null second element means zero records.
	if string(envelope[1]) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope[1], records); err != nil {
		return fmt.Errorf("decode envelope records: %w", err)
	}
	return nil
}

var _ provider.Source = (*Source)(nil)
