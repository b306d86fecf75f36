package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/tripmap/internal/adapters/mq/queue"
	worker "github.com/okian/tripmap/internal/adapters/mq/worker"
	logging "github.com/okian/tripmap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs      chan queue.Job
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 64)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.jobs) })
	return nil
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []int64
	fail map[int64]error
	wait time.Duration
}

func (p *recordingProcessor) Process(ctx context.Context, job queue.Job) error {
	if p.wait > 0 {
		select {
		case <-time.After(p.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, job.POI)
	return p.fail[job.POI]
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

// eventually polls cond until it holds or a second passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		proc := &recordingProcessor{}
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job arrives", func() {
			q.jobs <- queue.Job{ID: "j1", POI: 9}

			convey.Convey("Then it is processed", func() {
				convey.So(eventually(func() bool { return proc.count() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			_ = q.Close()

			convey.Convey("Then Run returns", func() {
				shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
				defer stop()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a processor slower than the job timeout", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		proc := &recordingProcessor{wait: time.Second}
		pool := worker.NewPool(1, q, proc, worker.WithJobTimeout(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		q.jobs <- queue.Job{ID: "slow", POI: 1}

		convey.Convey("Then the job fails with a deadline", func() {
			convey.So(eventually(func() bool { return pool.Stats().Failed == 1 }), convey.ShouldBeTrue)
			convey.So(proc.count(), convey.ShouldEqual, 0)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		proc := &recordingProcessor{fail: map[int64]error{3: errors.New("boom")}}
		pool := worker.NewPool(4, q, worker.ProcessorFunc(proc.Process))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When twenty jobs are queued", func() {
			for i := int64(0); i < 20; i++ {
				q.jobs <- queue.Job{ID: "job", POI: i}
			}

			convey.Convey("Then all are processed and failures are counted", func() {
				convey.So(eventually(func() bool { return pool.Stats().Processed == 20 }), convey.ShouldBeTrue)
				stats := pool.Stats()
				convey.So(stats.Workers, convey.ShouldEqual, 4)
				convey.So(stats.Failed, convey.ShouldEqual, 1)
				convey.So(stats.Active, convey.ShouldEqual, 0)
				convey.So(proc.count(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When shutting down with queued jobs", func() {
			for i := int64(100); i < 105; i++ {
				q.jobs <- queue.Job{ID: "drain", POI: i}
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is drained before workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.count(), convey.ShouldEqual, 5)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), &recordingProcessor{})

		convey.Convey("Then one worker per CPU is used", func() {
			convey.So(pool.Stats().Workers, convey.ShouldBeGreaterThan, 0)
		})
	})
}
