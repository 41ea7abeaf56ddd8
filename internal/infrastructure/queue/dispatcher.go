package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/api/metrics"
	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes incident activity records to a fixed set of workers,
// sharded on the incident id so records of one incident are persisted in
// the order they were recorded.
type Dispatcher struct {
	workers []chan domain.IncidentActivity
	service ports.ActivityService
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.IncidentActivity, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.IncidentActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is handed to the activity service
// for every record; cancelling it does not stop the workers, Stop does.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues a record on the worker responsible for its incident. It
// never blocks: when the worker queue is full the record is dropped and
// logged.
func (d *Dispatcher) Record(a domain.IncidentActivity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.ActivityDroppedTotal.Inc()
		return
	}

	switch a.Kind {
	case domain.ActivityCreated:
		metrics.IncidentsCreatedTotal.Inc()
	case domain.ActivityStatusChanged:
		metrics.IncidentStatusChangesTotal.WithLabelValues(string(a.Status)).Inc()
	}

	idx := d.shardIndex(a.IncidentID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().
			Int64("incident_id", a.IncidentID).
			Str("kind", string(a.Kind)).
			Int("worker_id", idx).
			Msg("activity queue full, record dropped")
	}
}

// Stop closes every worker queue and waits until the queued records have
// been processed.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an incident id deterministically to a worker index.
func (d *Dispatcher) shardIndex(incidentID int64) int {
	n := int64(len(d.workers))
	return int(((incidentID % n) + n) % n)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.IncidentActivity) {
	defer d.wg.Done()

	label := strconv.Itoa(id)
	for a := range ch {
		metrics.ActivityQueueDepth.WithLabelValues(label).Dec()

		start := time.Now()
		err := d.service.Process(ctx, a)
		metrics.ActivityProcessingDuration.WithLabelValues(string(a.Kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ActivityErrorsTotal.WithLabelValues(string(a.Kind)).Inc()
			d.log.Error().Err(err).
				Int64("incident_id", a.IncidentID).
				Int("worker_id", id).
				Msg("activity processing failed")
			continue
		}
		metrics.ActivityProcessedTotal.WithLabelValues(string(a.Kind)).Inc()
	}
}
