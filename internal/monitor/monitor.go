package monitor

import (
	"math"
	"time"

	"github.com/google/uuid"

	"smart-quiz-service/internal/models"
)

// Monitor is the per-attempt distraction state machine. All methods take
// explicit timestamps and must be driven from a single goroutine; Session
// provides that goroutine in production, tests call the methods directly.
// Once stopped, every transition is a no-op.
type Monitor struct {
	attemptID      string
	cfg            Config
	active         bool
	startTime      time.Time
	lastActivity   time.Time
	tabVisible     bool
	isIdle         bool
	devtoolsOpen   bool
	tabSwitchCount int
	totalIdle      time.Duration
	totalEvents    int
	eventCounts    map[models.DistractionEventKind]int
}

// New creates a monitor in the Active, TabVisible state with counters zeroed.
func New(attemptID string, cfg Config, now time.Time) *Monitor {
	return &Monitor{
		attemptID:    attemptID,
		cfg:          cfg,
		active:       true,
		startTime:    now,
		lastActivity: now,
		tabVisible:   true,
		eventCounts:  make(map[models.DistractionEventKind]int),
	}
}

func (m *Monitor) emit(kind models.DistractionEventKind, at time.Time, payload map[string]interface{}) []models.DistractionEvent {
	m.totalEvents++
	m.eventCounts[kind]++
	return []models.DistractionEvent{{
		ID:        uuid.NewString(),
		AttemptID: m.attemptID,
		Kind:      kind,
		Timestamp: at,
		Payload:   payload,
	}}
}

// Activity registers a mouse/keyboard/scroll/touch signal. Resuming from
// idle emits activity_resumed with the idle duration.
func (m *Monitor) Activity(now time.Time) []models.DistractionEvent {
	if !m.active {
		return nil
	}
	gap := now.Sub(m.lastActivity)
	wasIdle := m.isIdle
	m.lastActivity = now
	if wasIdle && gap > m.cfg.ActivityResumeGap {
		m.isIdle = false
		return m.emit(models.EventActivityResumed, now, map[string]interface{}{
			"idle_duration_ms": gap.Milliseconds(),
		})
	}
	return nil
}

// Visibility flips the tab-visibility flag. Duplicate same-state signals are
// ignored, so tabSwitchCount only moves on visible-to-hidden transitions.
func (m *Monitor) Visibility(visible bool, now time.Time) []models.DistractionEvent {
	if !m.active || visible == m.tabVisible {
		return nil
	}
	m.tabVisible = visible
	if !visible {
		m.tabSwitchCount++
		return m.emit(models.EventTabSwitchAway, now, nil)
	}
	return m.emit(models.EventTabSwitchBack, now, nil)
}

// Tick fires once per TickInterval. It detects the idle transition and, while
// idle, accrues one interval of idle time per tick.
func (m *Monitor) Tick(now time.Time) []models.DistractionEvent {
	if !m.active {
		return nil
	}
	if m.isIdle {
		m.totalIdle += m.cfg.TickInterval
		return nil
	}
	if gap := now.Sub(m.lastActivity); gap > m.cfg.IdleThreshold {
		m.isIdle = true
		return m.emit(models.EventIdleDetected, now, map[string]interface{}{
			"idle_duration_ms": gap.Milliseconds(),
		})
	}
	return nil
}

// Heartbeat snapshots the running counters as a liveness signal.
func (m *Monitor) Heartbeat(now time.Time) []models.DistractionEvent {
	if !m.active {
		return nil
	}
	return m.emit(models.EventHeartbeat, now, map[string]interface{}{
		"tab_switch_count": m.tabSwitchCount,
		"total_idle_ms":    m.totalIdle.Milliseconds(),
		"is_idle":          m.isIdle,
		"tab_visible":      m.tabVisible,
	})
}

// ContextMenuBlocked records a blocked right-click. No state change.
func (m *Monitor) ContextMenuBlocked(now time.Time) []models.DistractionEvent {
	if !m.active {
		return nil
	}
	return m.emit(models.EventContextMenuBlocked, now, nil)
}

// ViewportSample applies the devtools heuristic: an outer-vs-inner delta
// beyond DevtoolsDeltaPx on either axis means devtools are open. The event
// fires only on the open-edge transition, not on every sample.
func (m *Monitor) ViewportSample(outerW, innerW, outerH, innerH int, now time.Time) []models.DistractionEvent {
	if !m.active {
		return nil
	}
	open := outerW-innerW > m.cfg.DevtoolsDeltaPx || outerH-innerH > m.cfg.DevtoolsDeltaPx
	if open && !m.devtoolsOpen {
		m.devtoolsOpen = true
		return m.emit(models.EventDevtoolsOpened, now, map[string]interface{}{
			"width_delta":  outerW - innerW,
			"height_delta": outerH - innerH,
		})
	}
	if !open {
		m.devtoolsOpen = false
	}
	return nil
}

// Apply routes an ingested client signal to the matching transition.
func (m *Monitor) Apply(sig Signal) []models.DistractionEvent {
	switch sig.Kind {
	case SignalActivity:
		return m.Activity(sig.Timestamp)
	case SignalVisibility:
		return m.Visibility(sig.Visible, sig.Timestamp)
	case SignalViewport:
		return m.ViewportSample(sig.OuterWidth, sig.InnerWidth, sig.OuterHeight, sig.InnerHeight, sig.Timestamp)
	case SignalContextMenu:
		return m.ContextMenuBlocked(sig.Timestamp)
	}
	return nil
}

// Stop moves the monitor to its terminal state and emits monitoring_stopped
// carrying the final summary. A stopped monitor accepts no further input; a
// new attempt requires a fresh Monitor.
func (m *Monitor) Stop(now time.Time) (Summary, []models.DistractionEvent) {
	if !m.active {
		return m.Snapshot(now), nil
	}
	m.active = false
	summary := m.Snapshot(now)
	ev := m.emit(models.EventMonitoringStopped, now, map[string]interface{}{
		"focus_score":        summary.FocusScore,
		"tab_switch_count":   summary.TabSwitchCount,
		"total_idle_time_ms": summary.TotalIdleTimeMs,
		"elapsed_ms":         summary.ElapsedMs,
		"total_events":       summary.TotalEvents,
	})
	return summary, ev
}

// Snapshot computes the current summary without changing state.
func (m *Monitor) Snapshot(now time.Time) Summary {
	elapsed := now.Sub(m.startTime)

	score := 100.0
	score -= math.Min(float64(m.tabSwitchCount*10), 50)
	if elapsed > 0 {
		idlePct := float64(m.totalIdle.Milliseconds()) / float64(elapsed.Milliseconds()) * 100
		score -= math.Min(idlePct*2, 30)
	}
	suspicious := m.eventCounts[models.EventDevtoolsOpened] + m.eventCounts[models.EventContextMenuBlocked]
	score -= float64(suspicious * 5)
	if score < 0 {
		score = 0
	}

	counts := make(map[models.DistractionEventKind]int, len(m.eventCounts))
	for k, v := range m.eventCounts {
		counts[k] = v
	}
	return Summary{
		AttemptID:       m.attemptID,
		TotalEvents:     m.totalEvents,
		TabSwitchCount:  m.tabSwitchCount,
		TotalIdleTimeMs: m.totalIdle.Milliseconds(),
		ElapsedMs:       elapsed.Milliseconds(),
		EventCounts:     counts,
		FocusScore:      int(math.Round(score)),
	}
}
