package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskhq/task-manager-api/internal/api/metrics"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes activity records to a fixed set of workers using
// consistent hashing on the task id, guaranteeing per-task feed ordering.
// It keeps activity persistence off the request path.
type Dispatcher struct {
	workers []chan ports.TaskActivityInput
	service ports.ActivityService
	log     zerolog.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.TaskActivityInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.TaskActivityInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when Stop closes their
// intake; ctx only bounds the processing of individual records, so a caller
// that wants records emitted during server drain to survive must not pass a
// context tied to the shutdown signal.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the intake and blocks until every queued record has been
// processed. Safe to call more than once. Records enqueued after Stop are
// dropped with a log line rather than deadlocking the caller.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// Enqueue sends a record to the worker responsible for its task id.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(activity ports.TaskActivityInput) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn().Str("task_id", activity.TaskID).Msg("activity dropped, dispatcher stopped")
		return
	}

	idx := d.shardIndex(activity.TaskID)
	d.workers[idx] <- activity
	metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a task id deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.TaskActivityInput) {
	defer d.wg.Done()
	gauge := metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id))
	for activity := range ch {
		gauge.Set(float64(len(ch)))
		if err := d.service.Process(ctx, activity); err != nil {
			d.log.Error().Err(err).
				Str("task_id", activity.TaskID).
				Int("worker_id", id).
				Msg("activity processing failed")
		}
	}
}
