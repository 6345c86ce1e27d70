package models

import "time"

type DistractionEventKind string

const (
	EventTabSwitchAway      DistractionEventKind = "tab_switch_away"
	EventTabSwitchBack      DistractionEventKind = "tab_switch_back"
	EventIdleDetected       DistractionEventKind = "idle_detected"
	EventActivityResumed    DistractionEventKind = "activity_resumed"
	EventHeartbeat          DistractionEventKind = "heartbeat"
	EventContextMenuBlocked DistractionEventKind = "context_menu_blocked"
	EventDevtoolsOpened     DistractionEventKind = "devtools_opened"
	EventMonitoringStopped  DistractionEventKind = "monitoring_stopped"
)

// DistractionEvent is an append-only telemetry record. Ordering by timestamp
// is significant for idle/resume detection. IDs are generated server-side so
// the event sink can deduplicate under at-least-once delivery.
type DistractionEvent struct {
	ID        string                 `bson:"_id" json:"id"`
	AttemptID string                 `bson:"attempt_id" json:"attempt_id"`
	Kind      DistractionEventKind   `bson:"kind" json:"kind"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Payload   map[string]interface{} `bson:"payload,omitempty" json:"payload,omitempty"`
}
