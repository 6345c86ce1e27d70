package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"smart-quiz-service/internal/apperr"
	"smart-quiz-service/internal/models"
)

// Sink receives buffered distraction events. Delivery is at-least-once, so
// implementations must tolerate duplicate event ids.
type Sink interface {
	AppendEvents(ctx context.Context, attemptID string, events []models.DistractionEvent) error
}

var ErrSessionStopped = errors.New("monitoring session stopped")

const sinkTimeout = 5 * time.Second

// Session drives one attempt's Monitor on a single goroutine: timer ticks,
// heartbeats, ingested client signals and stop requests are serialized
// through one select loop, so the Monitor itself needs no locking. Emitted
// events are buffered and delivered to the sink in batches; a failed batch is
// put back at the front of the queue for the next flush.
type Session struct {
	attemptID string
	cfg       Config
	mon       *Monitor
	sink      Sink
	now       func() time.Time

	signals   chan Signal
	snapshots chan chan Summary
	stops     chan chan Summary
	done      chan struct{}

	queue []models.DistractionEvent
}

// StartSession creates the monitor state and launches its event loop. The
// clock is injectable for tests; pass nil for time.Now.
func StartSession(attemptID string, cfg Config, sink Sink, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		attemptID: attemptID,
		cfg:       cfg,
		mon:       New(attemptID, cfg, now()),
		sink:      sink,
		now:       now,
		signals:   make(chan Signal, 64),
		snapshots: make(chan chan Summary),
		stops:     make(chan chan Summary),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Offer hands a client signal to the session. Signals arriving after Stop
// are rejected with ErrSessionStopped rather than silently queued. A signal
// racing a concurrent Stop may be reported stopped even though the loop
// already applied it; callers treat that as not delivered.
func (s *Session) Offer(sig Signal) error {
	if sig.Timestamp.IsZero() {
		sig.Timestamp = s.now()
	}
	select {
	case <-s.done:
		return ErrSessionStopped
	default:
	}
	select {
	case <-s.done:
		return ErrSessionStopped
	case s.signals <- sig:
	}
	// The buffered send can win the race against a closing session, leaving
	// the signal queued with no reader. Report that instead of claiming
	// delivery.
	select {
	case <-s.done:
		return ErrSessionStopped
	default:
		return nil
	}
}

// Summary returns the current rollup without stopping the session.
func (s *Session) Summary() (Summary, error) {
	reply := make(chan Summary, 1)
	select {
	case <-s.done:
		return Summary{}, ErrSessionStopped
	case s.snapshots <- reply:
		return <-reply, nil
	}
}

// Stop terminates the session, flushes the remaining buffer and returns the
// final summary. Stopping twice returns ErrSessionStopped.
func (s *Session) Stop() (Summary, error) {
	reply := make(chan Summary, 1)
	select {
	case <-s.done:
		return Summary{}, ErrSessionStopped
	case s.stops <- reply:
		return <-reply, nil
	}
}

func (s *Session) run() {
	tick := time.NewTicker(s.cfg.TickInterval)
	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer tick.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case sig := <-s.signals:
			s.enqueue(s.mon.Apply(sig))
			if len(s.queue) >= s.cfg.FlushBatchSize {
				s.flush()
			}
		case <-tick.C:
			s.enqueue(s.mon.Tick(s.now()))
			if len(s.queue) >= s.cfg.FlushBatchSize {
				s.flush()
			}
		case <-heartbeat.C:
			s.enqueue(s.mon.Heartbeat(s.now()))
			s.flush()
		case reply := <-s.snapshots:
			reply <- s.mon.Snapshot(s.now())
		case reply := <-s.stops:
			// Closing done first bars new signals; anything a successful
			// Offer already buffered is drained into the final summary.
			close(s.done)
			s.drain()
			summary, ev := s.mon.Stop(s.now())
			s.enqueue(ev)
			s.flush()
			reply <- summary
			return
		}
	}
}

func (s *Session) drain() {
	for {
		select {
		case sig := <-s.signals:
			s.enqueue(s.mon.Apply(sig))
		default:
			return
		}
	}
}

func (s *Session) enqueue(events []models.DistractionEvent) {
	if len(events) == 0 {
		return
	}
	s.queue = append(s.queue, events...)
	if over := len(s.queue) - s.cfg.MaxQueuedEvents; over > 0 {
		log.Printf("attempt %s: event queue full, dropping %d oldest events", s.attemptID, over)
		s.queue = s.queue[over:]
	}
}

// flush delivers the pending batch. On failure the batch is requeued at the
// front so ordering survives the retry; the error is logged, never surfaced
// to the learner.
func (s *Session) flush() {
	if len(s.queue) == 0 {
		return
	}
	batch := s.queue
	s.queue = nil

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := s.sink.AppendEvents(ctx, s.attemptID, batch); err != nil {
		log.Printf("attempt %s: %v, requeueing %d events", s.attemptID, &apperr.DeliveryError{Err: err}, len(batch))
		s.queue = append(batch, s.queue...)
	}
}
