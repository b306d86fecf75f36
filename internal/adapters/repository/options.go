package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithBatchSize sets how many rows an insert statement batch holds per transaction.
func WithBatchSize(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}
