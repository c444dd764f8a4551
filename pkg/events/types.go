package events

import (
	"encoding/json"
	"time"
)

// Event name constants
const (
	ToolUse          = "tool_use"
	Calculated       = "bmi_calculated"
	Share            = "share"
	Shared           = "bmi_shared"
	Engagement       = "engagement"
	ScrollEngagement = "scroll_engagement"
	TimerEngagement  = "timer_engagement"
	LanguageChanged  = "language_changed"
	HistoryCleared   = "history_cleared"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// Payload is the body carried by every event: free-form parameters plus
// the time the event was raised.
type Payload struct {
	Params map[string]any `json:"params,omitempty"`
	Ts     int64          `json:"ts"`
}

// NewPayload stamps params with the current time.
func NewPayload(params map[string]any) Payload {
	return Payload{Params: params, Ts: time.Now().UnixMilli()}
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
