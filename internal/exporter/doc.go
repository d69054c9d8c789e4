// Package exporter serializes panels, metadata tables and individual
// series to CSV files, and mirrors the two main tables into an Excel
// workbook per provider.
package exporter
