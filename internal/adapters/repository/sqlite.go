package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/pkg/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	defaultMaxOpenConns = 8
	defaultBusyTimeout  = 5 * time.Second
	defaultBatchSize    = 500
)

// SQLiteStore implements Store on an SQLite database file.
type SQLiteStore struct {
	db           *sql.DB
	maxOpenConns int
	busyTimeout  time.Duration
	batchSize    int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path. WAL journaling and
// foreign keys are enabled on every pooled connection.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		maxOpenConns: defaultMaxOpenConns,
		busyTimeout:  defaultBusyTimeout,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	s.db = db
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// observe records latency and failures of one operation.
func observe(op string, start time.Time, err *error) {
	metrics.RecordRepositoryQuery(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordRepositoryError(op)
	}
}

// transaction runs fn inside a transaction, rolling back on error or panic.
func (s *SQLiteStore) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Migrate creates the tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) (err error) {
	defer observe("migrate", time.Now(), &err)
	return s.transaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

// AreaTypes lists every area type ordered by id.
func (s *SQLiteStore) AreaTypes(ctx context.Context) (out []model.AreaType, err error) {
	defer observe("area_types", time.Now(), &err)
	rows, err := s.db.QueryContext(ctx, `SELECT id, identifier, name, is_poi FROM area_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query area types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var at model.AreaType
		if err := rows.Scan(&at.ID, &at.Identifier, &at.Name, &at.IsPOI); err != nil {
			return nil, fmt.Errorf("scan area type: %w", err)
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// AreaType returns the area type with the given identifier.
func (s *SQLiteStore) AreaType(ctx context.Context, identifier string) (at model.AreaType, err error) {
	defer observe("area_type", time.Now(), &err)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, identifier, name, is_poi FROM area_types WHERE identifier = ?`, identifier,
	).Scan(&at.ID, &at.Identifier, &at.Name, &at.IsPOI)
	if errors.Is(err, sql.ErrNoRows) {
		return at, fmt.Errorf("%w: area type %q", ErrNotFound, identifier)
	}
	if err != nil {
		return at, fmt.Errorf("query area type %q: %w", identifier, err)
	}
	return at, nil
}

// Areas lists the areas of one type ordered by id.
func (s *SQLiteStore) Areas(ctx context.Context, areaTypeID int64) (out []model.Area, err error) {
	defer observe("areas", time.Now(), &err)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, area_type_id, identifier, name FROM areas WHERE area_type_id = ? ORDER BY id`, areaTypeID)
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.ID, &a.AreaTypeID, &a.Identifier, &a.Name); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Area returns one area by id.
func (s *SQLiteStore) Area(ctx context.Context, id int64) (a model.Area, err error) {
	defer observe("area", time.Now(), &err)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, area_type_id, identifier, name FROM areas WHERE id = ?`, id,
	).Scan(&a.ID, &a.AreaTypeID, &a.Identifier, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("%w: area %d", ErrNotFound, id)
	}
	if err != nil {
		return a, fmt.Errorf("query area %d: %w", id, err)
	}
	return a, nil
}

// selectionFilter renders the date and weekday conditions of sel.
func selectionFilter(sel model.Selection) (string, []any, error) {
	if !sel.Range.Valid() {
		return "", nil, fmt.Errorf("%w: date range %s..%s", ErrInvalidSelection,
			sel.Range.Start.Format(model.DateLayout), sel.Range.End.Format(model.DateLayout))
	}
	conds := []string{"date BETWEEN ? AND ?"}
	args := []any{sel.Range.Start.Format(model.DateLayout), sel.Range.End.Format(model.DateLayout)}
	switch sel.WeekSubset {
	case model.WeekWeekend:
		conds = append(conds, "strftime('%w', date) IN ('0', '6')")
	case model.WeekWorkday:
		conds = append(conds, "strftime('%w', date) NOT IN ('0', '6')")
	}
	return strings.Join(conds, " AND "), args, nil
}

// quantityColumn maps the selected quantity onto its column.
func quantityColumn(q model.Quantity) (string, error) {
	switch q {
	case model.QuantityTrips:
		return "trips", nil
	case model.QuantityLengths:
		return "length", nil
	}
	return "", fmt.Errorf("%w: quantity %q", ErrInvalidSelection, q)
}

// ModeValues sums the selected quantity per area and mode.
func (s *SQLiteStore) ModeValues(ctx context.Context, sel model.Selection, areaTypeID int64) (out []model.AreaModeValue, err error) {
	defer observe("mode_values", time.Now(), &err)
	col, err := quantityColumn(sel.Quantity)
	if err != nil {
		return nil, err
	}
	where, args, err := selectionFilter(sel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT area_id, mode, SUM(%s) FROM daily_mode_stats
		WHERE area_type_id = ? AND %s
		GROUP BY area_id, mode ORDER BY area_id, mode`, col, where)
	rows, err := s.db.QueryContext(ctx, query, append([]any{areaTypeID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query mode values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v model.AreaModeValue
		if err := rows.Scan(&v.AreaID, &v.Mode, &v.Value); err != nil {
			return nil, fmt.Errorf("scan mode value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PoiTrips returns the trips between areas of one type and a POI.
func (s *SQLiteStore) PoiTrips(ctx context.Context, sel model.Selection, areaTypeID, poiID int64) (out []model.TripRecord, err error) {
	defer observe("poi_trips", time.Now(), &err)
	where, args, err := selectionFilter(sel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT area_id, poi_id, mode, is_inbound, SUM(trips), SUM(length) FROM daily_poi_trips
		WHERE area_type_id = ? AND poi_id = ? AND %s
		GROUP BY area_id, poi_id, mode, is_inbound ORDER BY area_id, mode, is_inbound DESC`, where)
	rows, err := s.db.QueryContext(ctx, query, append([]any{areaTypeID, poiID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query poi trips: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r   model.TripRecord
			poi int64
		)
		if err := rows.Scan(&r.AreaID, &poi, &r.Mode, &r.IsInbound, &r.Trips, &r.Length); err != nil {
			return nil, fmt.Errorf("scan poi trip: %w", err)
		}
		r.POIID = &poi
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertAreaType stores an area type; a zero ID is assigned by the database.
func (s *SQLiteStore) InsertAreaType(ctx context.Context, at model.AreaType) (id int64, err error) {
	defer observe("insert_area_type", time.Now(), &err)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO area_types (id, identifier, name, is_poi) VALUES (?, ?, ?, ?)`,
		nullableID(at.ID), at.Identifier, at.Name, at.IsPOI)
	if err != nil {
		return 0, fmt.Errorf("insert area type %q: %w", at.Identifier, err)
	}
	metrics.RecordRowsWritten("area_types", 1)
	return res.LastInsertId()
}

// InsertArea stores an area; a zero ID is assigned by the database.
func (s *SQLiteStore) InsertArea(ctx context.Context, a model.Area) (id int64, err error) {
	defer observe("insert_area", time.Now(), &err)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO areas (id, area_type_id, identifier, name) VALUES (?, ?, ?, ?)`,
		nullableID(a.ID), a.AreaTypeID, a.Identifier, a.Name)
	if err != nil {
		return 0, fmt.Errorf("insert area %q: %w", a.Identifier, err)
	}
	metrics.RecordRowsWritten("areas", 1)
	return res.LastInsertId()
}

// InsertModeStats stores daily mode statistics in batched transactions.
func (s *SQLiteStore) InsertModeStats(ctx context.Context, stats []ModeStat) (err error) {
	defer observe("insert_mode_stats", time.Now(), &err)
	const stmt = `INSERT INTO daily_mode_stats (area_type_id, area_id, date, mode, trips, length) VALUES (?, ?, ?, ?, ?, ?)`
	return insertBatches(ctx, s, "daily_mode_stats", stmt, stats, func(m ModeStat) []any {
		return []any{m.AreaTypeID, m.AreaID, m.Date.Format(model.DateLayout), m.Mode, m.Trips, m.Length}
	})
}

// InsertPoiTrips stores daily POI trips in batched transactions.
func (s *SQLiteStore) InsertPoiTrips(ctx context.Context, trips []PoiTrip) (err error) {
	defer observe("insert_poi_trips", time.Now(), &err)
	const stmt = `INSERT INTO daily_poi_trips (area_type_id, area_id, poi_id, date, mode, is_inbound, trips, length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	return insertBatches(ctx, s, "daily_poi_trips", stmt, trips, func(p PoiTrip) []any {
		return []any{p.AreaTypeID, p.AreaID, p.POIID, p.Date.Format(model.DateLayout), p.Mode, p.IsInbound, p.Trips, p.Length}
	})
}

func insertBatches[T any](ctx context.Context, s *SQLiteStore, table, stmt string, items []T, args func(T) []any) error {
	for lo := 0; lo < len(items); lo += s.batchSize {
		batch := items[lo:min(lo+s.batchSize, len(items))]
		err := s.transaction(ctx, func(tx *sql.Tx) error {
			prepared, err := tx.PrepareContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("prepare %s insert: %w", table, err)
			}
			defer prepared.Close()
			for _, item := range batch {
				if _, err := prepared.ExecContext(ctx, args(item)...); err != nil {
					return fmt.Errorf("insert into %s: %w", table, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		metrics.RecordRowsWritten(table, len(batch))
	}
	return nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
