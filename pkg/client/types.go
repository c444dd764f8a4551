package client

import (
	"time"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/offline"
	"github.com/charlie0129/bmi/pkg/share"
)

// CalculateRequest is the body of POST /api/calculate.
type CalculateRequest struct {
	Height string `json:"height"`
	Weight string `json:"weight"`
}

// ResultResponse is returned by every call that may recalculate. Result is
// nil when the input does not describe a valid measurement.
type ResultResponse struct {
	Result *bmi.Result `json:"result"`
	View   app.View    `json:"view"`
}

type ShareRequest struct {
	Method string `json:"method"`
}

type ShareResponse struct {
	Message share.Message `json:"message"`
}

// EventRequest reports a page interaction to POST /api/events.
type EventRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// RefreshStatus describes the offline cache refresh schedule.
type RefreshStatus struct {
	Schedule  string    `json:"schedule,omitempty"`
	NextRun   time.Time `json:"nextRun,omitempty"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Running   bool      `json:"running"`
}

// CacheResponse is returned by GET /api/cache.
type CacheResponse struct {
	Status  offline.Status `json:"status"`
	Origin  string         `json:"origin"`
	Refresh RefreshStatus  `json:"refresh"`
}
