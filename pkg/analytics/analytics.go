// Package analytics forwards usage events to an optional external sink.
// Nothing here may affect the caller: sends are asynchronous and their
// failures are only logged.
package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/events"
)

const (
	sendTimeout     = 5 * time.Second
	scrollThreshold = 100
)

// Event is what a sink receives.
type Event struct {
	Name     string         `json:"name"`
	Params   map[string]any `json:"params,omitempty"`
	ClientID string         `json:"client_id"`
	Time     time.Time      `json:"time"`
}

// Sink delivers events somewhere.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// HTTPSink posts each event as JSON to an endpoint.
type HTTPSink struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPSink(endpoint string) *HTTPSink {
	return &HTTPSink{
		client:   resty.New().SetTimeout(sendTimeout),
		endpoint: endpoint,
	}
}

func (s *HTTPSink) Send(ctx context.Context, e Event) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(e).
		Post(s.endpoint)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to send event %s", e.Name)
	}
	if resp.IsError() {
		return pkgerrors.Errorf("sink rejected event %s: got %d", e.Name, resp.StatusCode())
	}
	return nil
}

// Tracker emits events to the hub and the sink. A nil *Tracker, or one
// without a sink, is valid and only does what it can.
type Tracker struct {
	sink     Sink
	hub      *events.Hub
	clientID string

	interacted atomic.Bool
	scrolled   atomic.Bool
	wg         sync.WaitGroup
}

func NewTracker(sink Sink, hub *events.Hub) *Tracker {
	return &Tracker{
		sink:     sink,
		hub:      hub,
		clientID: uuid.NewString(),
	}
}

// ClientID identifies this tracker to the sink.
func (t *Tracker) ClientID() string {
	if t == nil {
		return ""
	}
	return t.clientID
}

// Emit publishes name with params and returns immediately.
func (t *Tracker) Emit(name string, params map[string]any) {
	if t == nil {
		return
	}

	t.hub.Publish(name, events.NewPayload(params))

	if t.sink == nil {
		return
	}
	e := Event{Name: name, Params: params, ClientID: t.clientID, Time: time.Now()}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := t.sink.Send(ctx, e); err != nil {
			logrus.WithField("event", e.Name).Debugf("analytics send failed: %v", err)
		}
	}()
}

// FirstInteraction emits the engagement event the first time it is called.
func (t *Tracker) FirstInteraction() bool {
	if t == nil || !t.interacted.CompareAndSwap(false, true) {
		return false
	}
	t.Emit(events.Engagement, map[string]any{
		"event_category": "bmi_calculator",
		"event_label":    "first_interaction",
	})
	return true
}

// Scroll emits the scroll engagement event once the page has been
// scrolled past the threshold.
func (t *Tracker) Scroll(offset int) bool {
	if t == nil || offset <= scrollThreshold || !t.scrolled.CompareAndSwap(false, true) {
		return false
	}
	t.Emit(events.ScrollEngagement, map[string]any{"engagement_type": "scroll"})
	return true
}

// Dwell reports how long the page has been open.
func (t *Tracker) Dwell(d time.Duration) {
	t.Emit(events.TimerEngagement, map[string]any{"engagement_time_msec": d.Milliseconds()})
}

// Wait blocks until every in-flight send has finished.
func (t *Tracker) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}
