package audit

import (
	"context"
	"sync"
	"time"

	"pet-adoption-economy/internal/platform/logger"
)

// Outcomes reportados al Observer.
const (
	OutcomeWritten = "written"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

type Observer interface {
	ObserveAudit(outcome string)
}

const (
	DefaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// AsyncRecorder encola entradas y las escribe desde una única goroutine.
// Record nunca bloquea ni devuelve error: si la cola está llena la entrada se descarta.
type AsyncRecorder struct {
	sink Recorder
	log  logger.Logger
	obs  Observer

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	done   chan struct{}
}

func NewAsyncRecorder(sink Recorder, size int, log logger.Logger, obs Observer) *AsyncRecorder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = logger.Nop()
	}
	a := &AsyncRecorder{
		sink:  sink,
		log:   log,
		obs:   obs,
		queue: make(chan Entry, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

var _ Recorder = (*AsyncRecorder)(nil)

func (a *AsyncRecorder) Record(_ context.Context, e Entry) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.drop(e, "recorder closed")
		return nil
	}
	select {
	case a.queue <- e:
	default:
		a.drop(e, "queue full")
	}
	return nil
}

// Close deja de aceptar entradas y espera a que se escriban las encoladas
// (o a que venza ctx).
func (a *AsyncRecorder) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AsyncRecorder) run() {
	defer close(a.done)

	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := a.sink.Record(ctx, e)
		cancel()

		if err != nil {
			a.log.Error("audit write failed", map[string]any{
				"action":  e.Action,
				"user_id": e.UserID,
				"pet_id":  e.PetID,
				"err":     err,
			})
			a.observe(OutcomeFailed)
			continue
		}
		a.observe(OutcomeWritten)
	}
}

func (a *AsyncRecorder) drop(e Entry, reason string) {
	a.log.Warn("audit entry dropped", map[string]any{
		"reason":  reason,
		"action":  e.Action,
		"user_id": e.UserID,
		"pet_id":  e.PetID,
	})
	a.observe(OutcomeDropped)
}

func (a *AsyncRecorder) observe(outcome string) {
	if a.obs != nil {
		a.obs.ObserveAudit(outcome)
	}
}
