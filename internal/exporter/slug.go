package exporter

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns an indicator label into a safe CSV filename stem:
// lower-cased, with %, & and / spelled out and every other run of
// non-alphanumeric characters collapsed to a single underscore.
func Slug(label string) string {
	s := strings.ToLower(label)
	s = strings.ReplaceAll(s, "%", "pct")
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, "/", "_")
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// formatFloat renders a value with the shortest representation that
// round-trips.
func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
