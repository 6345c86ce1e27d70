package monitor

import (
	"time"

	"smart-quiz-service/internal/models"
)

// Config holds the monitor cadences and thresholds. All values have working
// defaults; tests shrink them to keep runs fast.
type Config struct {
	// IdleThreshold is how long the learner may go without activity before
	// the attempt is considered idle.
	IdleThreshold time.Duration
	// ActivityResumeGap is the minimum gap since the last activity for an
	// activity signal to count as resuming from idle.
	ActivityResumeGap time.Duration
	// TickInterval drives idle detection and idle-time accrual.
	TickInterval time.Duration
	// HeartbeatInterval drives liveness snapshots and delivery flushes.
	HeartbeatInterval time.Duration
	// DevtoolsDeltaPx is the outer-vs-inner viewport delta beyond which
	// devtools are assumed open.
	DevtoolsDeltaPx int
	// FlushBatchSize is the buffered event count that triggers delivery.
	FlushBatchSize int
	// MaxQueuedEvents bounds the pending delivery queue; beyond it the
	// oldest events are dropped with a logged warning.
	MaxQueuedEvents int
}

func DefaultConfig() Config {
	return Config{
		IdleThreshold:     30 * time.Second,
		ActivityResumeGap: time.Second,
		TickInterval:      time.Second,
		HeartbeatInterval: 10 * time.Second,
		DevtoolsDeltaPx:   200,
		FlushBatchSize:    10,
		MaxQueuedEvents:   1000,
	}
}

// Summary is the analytics rollup for one attempt. FocusScore starts at 100
// and only ever loses points, so it stays within [0,100].
type Summary struct {
	AttemptID       string                              `json:"attempt_id"`
	TotalEvents     int                                 `json:"total_events"`
	TabSwitchCount  int                                 `json:"tab_switch_count"`
	TotalIdleTimeMs int64                               `json:"total_idle_time_ms"`
	ElapsedMs       int64                               `json:"elapsed_ms"`
	EventCounts     map[models.DistractionEventKind]int `json:"event_counts"`
	FocusScore      int                                 `json:"focus_score"`
}

// Signal is one client-observed behavioral input, as delivered by the
// telemetry ingestion endpoint.
type Signal struct {
	Kind        SignalKind `json:"kind"`
	Visible     bool       `json:"visible"`
	OuterWidth  int        `json:"outer_width"`
	InnerWidth  int        `json:"inner_width"`
	OuterHeight int        `json:"outer_height"`
	InnerHeight int        `json:"inner_height"`
	Timestamp   time.Time  `json:"timestamp"`
}

type SignalKind string

const (
	SignalActivity    SignalKind = "activity"
	SignalVisibility  SignalKind = "visibility"
	SignalViewport    SignalKind = "viewport"
	SignalContextMenu SignalKind = "context_menu"
)
