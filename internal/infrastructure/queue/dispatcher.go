package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/portogeoloc/entregas/internal/api/metrics"
	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher routes delivery audit events to a fixed set of workers using
// consistent hashing on the delivery id, so events of one delivery are
// persisted in the order they were published.
type Dispatcher struct {
	workers []chan domain.DeliveryEvent
	repo    ports.EventRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.EventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.DeliveryEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.DeliveryEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands an event to the worker responsible for its delivery.
// It never blocks the request path: when the worker channel is full the
// event is dropped and counted as an error.
func (d *Dispatcher) Publish(event domain.DeliveryEvent) {
	idx := d.shardIndex(event.DeliveryID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsErrorsTotal.Inc()
		d.log.Warn().
			Str("delivery_id", event.DeliveryID).
			Str("kind", string(event.Kind)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a delivery id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deliveryID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deliveryID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.DeliveryEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.persist(ctx, id, event)
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event domain.DeliveryEvent) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(writeCtx, &event); err != nil {
		metrics.AuditEventsErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("delivery_id", event.DeliveryID).
			Str("kind", string(event.Kind)).
			Int("worker_id", id).
			Msg("audit event persistence failed")
	}
}
