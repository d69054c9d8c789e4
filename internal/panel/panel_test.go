package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

func TestBuild_PeriodUnionAndOrdering(t *testing.T) {
	data := map[string]provider.Series{
		"GDP": {"2001": 1.5, "2003": 2.5},
		"POP": {"2003": 17.0, "2010": 18.0},
	}
	labels := map[string]string{
		"GDP": "Gross domestic product",
		"POP": "Population",
	}

	p := Build(data, labels)

	assert.Equal(t, []string{"Year", "Gross domestic product [GDP]", "Population [POP]"}, p.Headers)
	require.Len(t, p.Rows, 3) // union of {2001, 2003, 2010}

	assert.Equal(t, []string{"2001", "1.5", ""}, p.Rows[0])
	assert.Equal(t, []string{"2003", "2.5", "17"}, p.Rows[1])
	assert.Equal(t, []string{"2010", "", "18"}, p.Rows[2])
}

func TestBuild_ColumnsSortedByLabel(t *testing.T) {
	data := map[string]provider.Series{
		"ZZZ": {"2000": 1},
		"AAA": {"2000": 2},
	}
	labels := map[string]string{
		"ZZZ": "Alpha indicator", // label sorts first despite the code
		"AAA": "Zulu indicator",
	}

	p := Build(data, labels)
	assert.Equal(t, []string{"Year", "Alpha indicator [ZZZ]", "Zulu indicator [AAA]"}, p.Headers)
}

func TestBuild_EmptySeriesContributesNothing(t *testing.T) {
	data := map[string]provider.Series{
		"HAS":   {"2020": 1.0},
		"EMPTY": {},
	}
	labels := map[string]string{"HAS": "Has data", "EMPTY": "No data"}

	p := Build(data, labels)

	assert.Equal(t, []string{"Year", "Has data [HAS]"}, p.Headers)
	require.Len(t, p.Rows, 1)
	// No period appears that exists in zero source series.
	assert.Equal(t, "2020", p.Rows[0][0])
}

func TestBuild_MissingIsEmptyStringNeverZero(t *testing.T) {
	data := map[string]provider.Series{
		"A": {"2001": 0.0}, // a true zero observation
		"B": {"2002": 5.0},
	}
	labels := map[string]string{"A": "A", "B": "B"}

	p := Build(data, labels)

	// 2001: A observed zero, B missing.
	assert.Equal(t, []string{"2001", "0", ""}, p.Rows[0])
	// 2002: A missing, B observed.
	assert.Equal(t, []string{"2002", "", "5"}, p.Rows[1])
}

func TestBuild_NoData(t *testing.T) {
	p := Build(map[string]provider.Series{}, map[string]string{})
	assert.True(t, p.Empty())
	assert.Equal(t, []string{"Year"}, p.Headers)
}

func TestBuild_LabelFallsBackToCode(t *testing.T) {
	p := Build(map[string]provider.Series{"X": {"2000": 1}}, map[string]string{})
	assert.Equal(t, []string{"Year", "X [X]"}, p.Headers)
}

func TestMetadataTable(t *testing.T) {
	records := []provider.Metadata{
		{
			Code:  "POP",
			Label: "Population",
			Fields: []provider.Field{
				{Key: "source_org", Value: "UN"},
				{Key: "topics", Value: "Demographics"},
			},
		},
		{
			Code:  "GDP",
			Label: "Gross domestic product",
			Fields: []provider.Field{
				{Key: "source_org", Value: "World Bank"},
				{Key: "topics", Value: "Economy"},
			},
		},
	}
	coverage := map[string]string{"GDP": "2001-2010", "POP": "1990-2023"}

	headers, rows := MetadataTable(records, coverage)

	assert.Equal(t, []string{"code", "label", "source_org", "topics", "years_available"}, headers)
	require.Len(t, rows, 2)
	// Sorted by label: GDP first.
	assert.Equal(t, []string{"GDP", "Gross domestic product", "World Bank", "Economy", "2001-2010"}, rows[0])
	assert.Equal(t, []string{"POP", "Population", "UN", "Demographics", "1990-2023"}, rows[1])
}

func TestMetadataTable_Empty(t *testing.T) {
	headers, rows := MetadataTable(nil, nil)
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}
