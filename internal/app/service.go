// Package service wires the trip-record store, the analytics engines, the
// result caches and the warmup worker pool behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tripmap/internal/adapters/cache"
	"github.com/okian/tripmap/internal/adapters/mq/queue"
	"github.com/okian/tripmap/internal/adapters/mq/worker"
	"github.com/okian/tripmap/internal/adapters/repository"
	"github.com/okian/tripmap/internal/domain/areametrics"
	"github.com/okian/tripmap/internal/domain/dataset"
	"github.com/okian/tripmap/internal/domain/model"
	"github.com/okian/tripmap/internal/domain/modes"
	"github.com/okian/tripmap/internal/domain/poirank"
	"github.com/okian/tripmap/pkg/logger"
	"github.com/okian/tripmap/pkg/metrics"
)

// Cache key prefixes; also the metrics label of each cache.
const (
	kindProjection = "projection"
	kindRanking    = "ranking"
)

// Status tells whether a result carries data.
type Status string

// Result states.
const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

// No-data reasons.
const (
	ReasonUnknownMode      = "unknown_mode"
	ReasonInsufficientData = "insufficient_data"
)

// AreaMetrics is the choropleth payload for one selection.
type AreaMetrics struct {
	Status    Status         `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	AreaType  string         `json:"area_type"`
	Mode      string         `json:"mode"`
	Quantity  model.Quantity `json:"quantity"`
	RangeDays int            `json:"range_days"`
	Colors    modes.Colors   `json:"colors"`
	Classes   int            `json:"classes"`
	Breaks    []float64      `json:"breaks"`
	Limits    []float64      `json:"limits"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	// Metrics is ordered by area id.
	Metrics []model.AreaMetric `json:"metrics"`
}

// Service implements the API dependencies for the trip analytics map.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	registry    *modes.Registry
	projector   *areametrics.Projector
	engine      *poirank.Engine
	projections *cache.Memo[AreaMetrics]
	aggregates  *cache.Memo[model.PoiAggregate]
	jobs        *queue.InMemoryQueue
	pool        *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	cacheSize       int
	topN            int
	classes         int
	threshold       float64
	defaultAreaType string
	defaultMode     string
	jobTimeout      time.Duration

	// State
	started bool

	logger logger.Logger
}

var _ worker.Processor = (*Service)(nil)

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:           store,
		registry:        modes.NewRegistry(modes.Defaults()),
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		cacheSize:       1024,
		topN:            5,
		classes:         7,
		threshold:       100,
		defaultAreaType: "tre:tilastoalue",
		defaultMode:     "car",
		jobTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	synthetic := make([]string, 0)
	for _, m := range s.registry.Synthetic() {
		synthetic = append(synthetic, m.Identifier)
	}
	s.projector = areametrics.NewProjector(
		areametrics.WithClasses(s.classes),
		areametrics.WithVisibilityThreshold(s.threshold),
		areametrics.WithSyntheticModes(synthetic...),
	)

	engine, err := poirank.NewEngine(poirank.WithTopN(s.topN))
	if err != nil {
		return nil, err
	}
	s.engine = engine

	s.projections = cache.New[AreaMetrics](cache.WithMaxSize(s.cacheSize))
	s.aggregates = cache.New[model.PoiAggregate](cache.WithMaxSize(s.cacheSize))
	return s, nil
}

// Start creates the warmup queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting tripmap service...")

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobs, s,
		worker.WithJobTimeout(s.jobTimeout),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "tripmap service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Int("modes", len(s.registry.Identifiers())),
	)
	return nil
}

// Stop drains pending warmup jobs and stops the workers. The store is
// owned by the caller and left open.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping tripmap service...")
	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "tripmap service stopped")
	return nil
}

// Registry returns the transport mode registry.
func (s *Service) Registry() *modes.Registry { return s.registry }

// Modes lists the registered transport modes in canonical order.
func (s *Service) Modes() []modes.Mode { return s.registry.All() }

// Normalize fills the selection fields a caller left empty.
func (s *Service) Normalize(sel model.Selection) model.Selection {
	if sel.AreaType == "" {
		sel.AreaType = s.defaultAreaType
	}
	if sel.Mode == "" {
		sel.Mode = s.defaultMode
	}
	if sel.Quantity == "" {
		sel.Quantity = model.QuantityTrips
	}
	return sel
}

// AreaTypes lists the known area types.
func (s *Service) AreaTypes(ctx context.Context) ([]model.AreaType, error) {
	return s.store.AreaTypes(ctx)
}

// Areas lists the areas of the area type with the given identifier.
func (s *Service) Areas(ctx context.Context, areaType string) ([]model.Area, error) {
	at, err := s.store.AreaType(ctx, areaType)
	if err != nil {
		return nil, err
	}
	return s.store.Areas(ctx, at.ID)
}

// AreaMetrics projects the selected mode over every area of the selected
// area type. An unknown mode or an empty selection yields a no_data result
// rather than an error.
func (s *Service) AreaMetrics(ctx context.Context, sel model.Selection) (AreaMetrics, error) {
	sel = s.Normalize(sel)
	key := kindProjection + "|" + sel.Key()
	if res, ok := s.projections.Get(ctx, key); ok {
		return res, nil
	}

	res, err := s.project(ctx, sel)
	if err != nil {
		return AreaMetrics{}, err
	}
	s.projections.Put(ctx, key, res)
	return res, nil
}

func (s *Service) project(ctx context.Context, sel model.Selection) (AreaMetrics, error) {
	start := time.Now()
	res := AreaMetrics{
		Status:    StatusOK,
		AreaType:  sel.AreaType,
		Mode:      sel.Mode,
		Quantity:  sel.Quantity,
		RangeDays: sel.Range.Days(),
		Classes:   s.projector.Classes(),
		Breaks:    []float64{},
		Limits:    []float64{},
		Metrics:   []model.AreaMetric{},
	}
	if m, ok := s.registry.Get(sel.Mode); ok {
		res.Colors = m.Colors
	}

	at, err := s.store.AreaType(ctx, sel.AreaType)
	if err != nil {
		return res, err
	}
	values, err := s.store.ModeValues(ctx, sel, at.ID)
	if err != nil {
		return res, err
	}
	data, err := repository.PivotModeShares(values, s.registry)
	if err != nil {
		return res, s.shapeError(ctx, "pivot mode shares", sel, err)
	}

	proj, err := s.projector.Project(data, sel.Mode, res.RangeDays)
	switch {
	case errors.Is(err, areametrics.ErrUnknownMode):
		return s.noData(ctx, res, ReasonUnknownMode, err), nil
	case errors.Is(err, areametrics.ErrInsufficientData):
		return s.noData(ctx, res, ReasonInsufficientData, err), nil
	case err != nil:
		return res, s.shapeError(ctx, "project area metrics", sel, err)
	}

	res.Breaks = append(res.Breaks, proj.Breaks...)
	res.Limits = append(res.Limits, proj.Limits...)
	res.Min, res.Max = proj.Min, proj.Max
	for _, m := range proj.Metrics {
		res.Metrics = append(res.Metrics, m)
	}
	slices.SortFunc(res.Metrics, func(a, b model.AreaMetric) int {
		switch {
		case a.AreaID < b.AreaID:
			return -1
		case a.AreaID > b.AreaID:
			return 1
		}
		return 0
	})
	metrics.RecordProjection(float64(time.Since(start).Microseconds())/1000)
	return res, nil
}

func (s *Service) noData(ctx context.Context, res AreaMetrics, reason string, err error) AreaMetrics {
	s.logger.Debug(ctx, "no data for selection",
		logger.String("area_type", res.AreaType),
		logger.String("mode", res.Mode),
		logger.String("reason", reason),
		logger.Error(err),
	)
	metrics.RecordNoData(kindProjection, reason)
	res.Status = StatusNoData
	res.Reason = reason
	return res
}

// shapeError logs a malformed-dataset failure. These indicate a bug in the
// pipeline rather than in the request.
func (s *Service) shapeError(ctx context.Context, op string, sel model.Selection, err error) error {
	if errors.Is(err, dataset.ErrSchema) || errors.Is(err, dataset.ErrType) {
		s.logger.Error(ctx, "dataset shape error",
			logger.String("op", op),
			logger.String("selection", sel.Key()),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("service", "dataset_shape")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PoiAggregate ranks the counterpart areas of poi under sel. topN below one
// uses the configured default.
func (s *Service) PoiAggregate(ctx context.Context, sel model.Selection, poi int64, topN int) (model.PoiAggregate, error) {
	sel = s.Normalize(sel)
	if topN < 1 {
		topN = s.topN
	}
	key := kindRanking + "|" + sel.Key() + "|" +
		strconv.FormatInt(poi, 10) + "|" + strconv.Itoa(topN)
	if agg, ok := s.aggregates.Get(ctx, key); ok {
		return agg, nil
	}

	agg, err := s.rank(ctx, sel, poi, topN)
	if err != nil {
		return model.PoiAggregate{}, err
	}
	s.aggregates.Put(ctx, key, agg)
	return agg, nil
}

func (s *Service) rank(ctx context.Context, sel model.Selection, poi int64, topN int) (model.PoiAggregate, error) {
	start := time.Now()

	engine := s.engine
	if topN != engine.TopN() {
		e, err := poirank.NewEngine(poirank.WithTopN(topN))
		if err != nil {
			return model.PoiAggregate{}, err
		}
		engine = e
	}

	at, err := s.store.AreaType(ctx, sel.AreaType)
	if err != nil {
		return model.PoiAggregate{}, err
	}
	target, err := s.store.Area(ctx, poi)
	if err != nil {
		return model.PoiAggregate{}, err
	}
	trips, err := s.store.PoiTrips(ctx, sel, at.ID, poi)
	if err != nil {
		return model.PoiAggregate{}, err
	}
	areas, err := s.store.Areas(ctx, at.ID)
	if err != nil {
		return model.PoiAggregate{}, err
	}

	records, err := poirank.Records(trips)
	if err != nil {
		return model.PoiAggregate{}, s.shapeError(ctx, "build trip records", sel, err)
	}
	lookup, err := poirank.Areas(areas)
	if err != nil {
		return model.PoiAggregate{}, s.shapeError(ctx, "build area lookup", sel, err)
	}

	agg, err := engine.Rank(poirank.Request{
		Records:   records,
		POI:       poi,
		ModeOrder: s.registry.Ordered(s.defaultMode),
		RangeDays: sel.Range.Days(),
		Areas:     lookup,
	})
	if err != nil {
		return model.PoiAggregate{}, s.shapeError(ctx, "rank poi counterparts", sel, err)
	}
	agg.Name = target.Name
	if len(trips) == 0 {
		metrics.RecordNoData(kindRanking, ReasonInsufficientData)
	}
	metrics.RecordRanking(float64(time.Since(start).Microseconds())/1000)
	return agg, nil
}

// Warm enqueues one precomputation job per POI for sel and returns the
// number of jobs accepted. A full queue stops enqueueing and reports
// queue.ErrFull alongside the count accepted so far.
func (s *Service) Warm(ctx context.Context, sel model.Selection) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return 0, ErrNotStarted
	}
	sel = s.Normalize(sel)
	if _, err := s.store.AreaType(ctx, sel.AreaType); err != nil {
		return 0, err
	}
	types, err := s.store.AreaTypes(ctx)
	if err != nil {
		return 0, err
	}

	batch := uuid.NewString()
	queued := 0
	for _, at := range types {
		if !at.IsPOI {
			continue
		}
		pois, err := s.store.Areas(ctx, at.ID)
		if err != nil {
			return queued, err
		}
		for _, p := range pois {
			job := queue.Job{
				ID:        batch + "/" + strconv.FormatInt(p.ID, 10),
				Selection: sel,
				POI:       p.ID,
				TopN:      s.topN,
			}
			if err := s.jobs.Enqueue(ctx, job); err != nil {
				s.logger.Warn(ctx, "warmup stopped early",
					logger.String("batch", batch),
					logger.Int("queued", queued),
					logger.Error(err),
				)
				return queued, fmt.Errorf("enqueue poi %d: %w", p.ID, err)
			}
			queued++
		}
	}
	s.logger.Debug(ctx, "warmup queued", logger.String("batch", batch), logger.Int("jobs", queued))
	return queued, nil
}

// Process computes and caches the aggregate a warmup job asks for.
func (s *Service) Process(ctx context.Context, job queue.Job) error {
	_, err := s.PoiAggregate(ctx, job.Selection, job.POI, job.TopN)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cacheSize":   s.cacheSize,
		"modes":       s.registry.Identifiers(),
		"projections": s.projections.Size(),
		"aggregates":  s.aggregates.Size(),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.pool.Stats()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
