// Package provider defines the capability set every data source implements
// and the tabular model shared by the pipelines.
package provider

import (
	"context"
	"sort"
)

// Series maps a period (a year or ISO date, provider-dependent) to an
// observed value. Periods with no recorded value are never stored, so an
// empty map is the explicit "no data for this country" state.
type Series map[string]float64

// Periods returns the series' periods in ascending order.
func (s Series) Periods() []string {
	periods := make([]string, 0, len(s))
	for period := range s {
		periods = append(periods, period)
	}
	sort.Strings(periods)
	return periods
}

// Coverage returns the inclusive period span formatted "{start}-{end}",
// or "" for an empty series.
func (s Series) Coverage() string {
	if len(s) == 0 {
		return ""
	}
	periods := s.Periods()
	return periods[0] + "-" + periods[len(periods)-1]
}

// Field is one descriptive attribute of an indicator. Metadata keeps fields
// as an ordered slice so CSV columns follow declaration order.
type Field struct {
	Key   string
	Value string
}

// Metadata describes one successfully downloaded indicator.
type Metadata struct {
	Code   string
	Label  string
	Fields []Field
}

// Source is the capability set a provider adapter implements. All three
// outcomes of Series must be distinguishable by the caller: a non-empty map
// is data, an empty map with nil error means the country has no
// observations for the indicator, and a non-nil error is a fetch failure.
type Source interface {
	// Name returns the provider's short name, used for output directories.
	Name() string

	// Indicators returns every available indicator as {code: label}.
	Indicators(ctx context.Context) (map[string]string, error)

	// Series fetches all observations of one indicator for the target
	// country.
	Series(ctx context.Context, code string) (Series, error)

	// Describe returns the metadata record for an indicator whose series
	// was downloaded. Implementations degrade to a minimal record rather
	// than failing when the introspection call errors.
	Describe(ctx context.Context, code, label string, series Series) Metadata
}
