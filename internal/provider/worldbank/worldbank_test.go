package worldbank

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AscendedCode/ecuador-macro/internal/config"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
)

func newTestSource(t *testing.T, handler http.Handler) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := fetch.NewClient(fetch.Options{
		Timeout:      5 * time.Second,
		Retries:      1,
		RetryBackoff: time.Millisecond,
	}, slog.Default())

	cfg := config.WorldBankConfig{
		BaseURL:  server.URL,
		SourceID: 2,
		PageSize: 2,
	}
	return New(cfg, "ECU", client, fetch.NopPacer{})
}

func TestIndicators_Paginated(t *testing.T) {
	pagesServed := 0
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/indicator", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("source"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		pagesServed++
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			fmt.Fprint(w, `[{"page":1,"pages":2,"total":3},[
				{"id":"NY.GDP.MKTP.CD","name":"GDP (current US$)","sourceOrganization":"World Bank","topics":[{"value":"Economy & Growth"}]},
				{"id":"SP.POP.TOTL","name":"Population, total","sourceOrganization":"UN","topics":[]}
			]]`)
		case "2":
			fmt.Fprint(w, `[{"page":"2","pages":"2","total":"3"},[
				{"id":"FP.CPI.TOTL.ZG","name":"Inflation (annual %)","sourceOrganization":"IMF","topics":[{"value":"Economy & Growth"},{"value":"Prices"}]}
			]]`)
		default:
			t.Fatalf("unexpected page %s", page)
		}
	}))

	indicators, err := src.Indicators(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, pagesServed)
	assert.Len(t, indicators, 3)
	assert.Equal(t, "GDP (current US$)", indicators["NY.GDP.MKTP.CD"])

	md := src.Describe(context.Background(), "FP.CPI.TOTL.ZG", "Inflation (annual %)", nil)
	require.Len(t, md.Fields, 2)
	assert.Equal(t, "IMF", md.Fields[0].Value)
	assert.Equal(t, "Economy & Growth, Prices", md.Fields[1].Value)
}

func TestIndicators_StopsOnEmptyPage(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"page":1,"pages":5},[{"id":"A","name":"Alpha"}]]`)
			return
		}
		// Reported page count lies; page 2 is empty.
		fmt.Fprint(w, `[{"page":2,"pages":5},[]]`)
	}))

	indicators, err := src.Indicators(context.Background())
	require.NoError(t, err)
	assert.Len(t, indicators, 1)
}

func TestSeries_SkipsNullValues(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/country/ECU/indicator/NY.GDP.MKTP.CD", r.URL.Path)
		fmt.Fprint(w, `[{"page":1,"pages":1},[
			{"date":"2022","value":115049476204.9},
			{"date":"2021","value":null},
			{"date":"2020","value":99291093811.5}
		]]`)
	}))

	series, err := src.Series(context.Background(), "NY.GDP.MKTP.CD")
	require.NoError(t, err)

	assert.Len(t, series, 2)
	assert.NotContains(t, series, "2021")
	assert.InDelta(t, 99291093811.5, series["2020"], 1e-3)
}

func TestSeries_EmptyCountry(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The API returns a null record list for unknown combinations.
		fmt.Fprint(w, `[{"page":1,"pages":1,"total":0},null]`)
	}))

	series, err := src.Series(context.Background(), "XX.NO.DATA")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestSeries_MalformedEnvelope(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Error responses come back as a one-element envelope.
		fmt.Fprint(w, `[{"message":[{"id":"120","value":"Invalid indicator"}]}]`)
	}))

	_, err := src.Series(context.Background(), "BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response shape")
}
