package synth

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Tripmap Seed Tool
=================

Creates an SQLite database and fills it with a deterministic synthetic
travel survey: statistical districts, points of interest, daily trips per
transport mode and daily trips between districts and POIs.

Usage:
  go run ./cmd/seed [options]

Options:
  -db string
        SQLite database file (default "tripmap.db")
  -districts int
        Number of districts (default 24)
  -pois int
        Number of points of interest (default 6)
  -start string
        First survey day, YYYY-MM-DD (default "2023-05-01")
  -days int
        Number of survey days (default 14)
  -seed int
        Random seed (default 1)
  -workers int
        Concurrent day generators (default 4)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/seed -db /tmp/trips.db -days 28
`)
}
