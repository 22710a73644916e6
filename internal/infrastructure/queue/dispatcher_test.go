package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portogeoloc/entregas/internal/api/metrics"
	"github.com/portogeoloc/entregas/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.DeliveryEvent
	err    error
}

func (r *recordingRepo) InsertEvent(ctx context.Context, e *domain.DeliveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *recordingRepo) snapshot() []domain.DeliveryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DeliveryEvent(nil), r.events...)
}

func TestDispatcher_PersistsInPublishOrderPerDelivery(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	kinds := []domain.EventKind{domain.EventCreated, domain.EventCodeVerified, domain.EventLocated}
	for i := 0; i < 5; i++ {
		id := "d" + strconv.Itoa(i)
		for _, k := range kinds {
			d.Publish(domain.DeliveryEvent{DeliveryID: id, Kind: k, Timestamp: time.Now()})
		}
	}

	require.Eventually(t, func() bool { return len(repo.snapshot()) == 15 }, 2*time.Second, 10*time.Millisecond)

	perDelivery := map[string][]domain.EventKind{}
	for _, e := range repo.snapshot() {
		perDelivery[e.DeliveryID] = append(perDelivery[e.DeliveryID], e.Kind)
	}
	for id, got := range perDelivery {
		assert.Equal(t, kinds, got, "delivery %s", id)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)

	first := d.shardIndex("abc-123")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("abc-123"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, defaultWorkers)
}

func TestDispatcher_PersistFailureIsCounted(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())

	before := testutil.ToFloat64(metrics.AuditEventsErrorsTotal)
	d.persist(context.Background(), 0, domain.DeliveryEvent{DeliveryID: "d1", Kind: domain.EventLocated})
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuditEventsErrorsTotal))
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	d := NewDispatcher(1, &recordingRepo{}, zerolog.Nop())
	// Not started: nothing drains the channel.
	for i := 0; i < channelBuffer; i++ {
		d.Publish(domain.DeliveryEvent{DeliveryID: "d1", Kind: domain.EventCreated})
	}

	before := testutil.ToFloat64(metrics.AuditEventsErrorsTotal)
	done := make(chan struct{})
	go func() {
		d.Publish(domain.DeliveryEvent{DeliveryID: "d1", Kind: domain.EventLocated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuditEventsErrorsTotal))
}
