package service

import (
	"time"

	"github.com/okian/tripmap/internal/domain/modes"
	"github.com/okian/tripmap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of warmup worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending warmup jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCacheSize bounds each result cache. Zero or less is unbounded.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithTopN sets the default number of counterparts per direction.
func WithTopN(n int) Option {
	return func(s *Service) {
		s.topN = n
	}
}

// WithColorClasses sets the number of quantile classes.
func WithColorClasses(k int) Option {
	return func(s *Service) {
		s.classes = k
	}
}

// WithVisibilityThreshold sets the absolute value below which an area has no data.
func WithVisibilityThreshold(v float64) Option {
	return func(s *Service) {
		s.threshold = v
	}
}

// WithRegistry sets the transport mode registry.
func WithRegistry(r *modes.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithDefaults sets the area type and mode used when a selection omits them.
func WithDefaults(areaType, mode string) Option {
	return func(s *Service) {
		if areaType != "" {
			s.defaultAreaType = areaType
		}
		if mode != "" {
			s.defaultMode = mode
		}
	}
}

// WithJobTimeout bounds the processing of a single warmup job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
