package monitor

import (
	"fmt"
	"sync"
	"time"

	"smart-quiz-service/internal/apperr"
)

// Registry owns the live monitoring sessions, one per in-progress attempt.
// It is constructed and held by the attempt service, never reached through
// package-level state.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	sink     Sink
	now      func() time.Time
}

func NewRegistry(cfg Config, sink Sink) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		sink:     sink,
	}
}

// WithClock overrides the registry clock. Test hook.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Start launches monitoring for an attempt. Exactly one session may exist
// per attempt.
func (r *Registry) Start(attemptID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[attemptID]; exists {
		return nil, fmt.Errorf("monitoring already active for attempt %s", attemptID)
	}
	session := StartSession(attemptID, r.cfg, r.sink, r.now)
	r.sessions[attemptID] = session
	return session, nil
}

func (r *Registry) Get(attemptID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[attemptID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return session, nil
}

// Stop terminates and discards the attempt's session, returning its final
// summary. The session's timers are cancelled before Stop returns, so no
// background activity outlives the attempt.
func (r *Registry) Stop(attemptID string) (Summary, error) {
	r.mu.Lock()
	session, ok := r.sessions[attemptID]
	delete(r.sessions, attemptID)
	r.mu.Unlock()
	if !ok {
		return Summary{}, apperr.ErrNotFound
	}
	return session.Stop()
}
