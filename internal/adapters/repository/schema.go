package repository

// Schema statements, applied in order by Migrate. Dates are stored as
// YYYY-MM-DD text so BETWEEN and strftime work on them directly.
var schemaStatements = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS area_types (
		id INTEGER PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		is_poi INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS areas (
		id INTEGER PRIMARY KEY,
		area_type_id INTEGER NOT NULL REFERENCES area_types(id),
		identifier TEXT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_areas_type ON areas(area_type_id)`,
	`CREATE TABLE IF NOT EXISTS daily_mode_stats (
		area_type_id INTEGER NOT NULL REFERENCES area_types(id),
		area_id INTEGER NOT NULL REFERENCES areas(id),
		date TEXT NOT NULL,
		mode TEXT NOT NULL,
		trips REAL NOT NULL DEFAULT 0,
		length REAL NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mode_stats_type_date ON daily_mode_stats(area_type_id, date)`,
	`CREATE TABLE IF NOT EXISTS daily_poi_trips (
		area_type_id INTEGER NOT NULL REFERENCES area_types(id),
		area_id INTEGER NOT NULL REFERENCES areas(id),
		poi_id INTEGER NOT NULL REFERENCES areas(id),
		date TEXT NOT NULL,
		mode TEXT NOT NULL,
		is_inbound INTEGER NOT NULL,
		trips REAL NOT NULL DEFAULT 0,
		length REAL NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poi_trips_poi_date ON daily_poi_trips(poi_id, area_type_id, date)`,
}
