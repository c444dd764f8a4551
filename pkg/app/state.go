// Package app holds the calculator's state: the active unit, the current
// input and result, and the handles used to persist and report them.
package app

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/analytics"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/events"
	"github.com/charlie0129/bmi/pkg/history"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/share"
	"github.com/charlie0129/bmi/pkg/storage"
)

const toolName = "bmi-calculator"

// Input is what the user typed, before parsing.
type Input struct {
	Height string `json:"height"`
	Weight string `json:"weight"`
}

// Snapshot is a consistent copy of everything the page shows.
type Snapshot struct {
	Unit     bmi.Unit        `json:"unit"`
	Input    Input           `json:"input"`
	Result   *bmi.Result     `json:"result"`
	History  []history.Entry `json:"history"`
	Language string          `json:"language"`
	Theme    Theme           `json:"theme"`
}

// State serializes every user action. One action runs to completion before
// the next starts.
type State struct {
	mu     sync.Mutex
	unit   bmi.Unit
	input  Input
	result *bmi.Result

	history  *history.Store
	resolver *i18n.Resolver
	prefs    storage.Store
	tracker  *analytics.Tracker
}

// New creates the state on top of prefs. tracker may be nil.
func New(prefs storage.Store, resolver *i18n.Resolver, tracker *analytics.Tracker) *State {
	return &State{
		unit:     bmi.Metric,
		history:  history.New(prefs),
		resolver: resolver,
		prefs:    prefs,
		tracker:  tracker,
	}
}

func (s *State) Resolver() *i18n.Resolver {
	return s.resolver
}

func (s *State) Tracker() *analytics.Tracker {
	return s.tracker
}

// Calculate reads height and weight in the active unit and computes the
// result. Input that does not parse, or is not positive, clears the result
// and returns nil.
func (s *State) Calculate(ctx context.Context, height, weight string) *bmi.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.FirstInteraction()
	s.input = Input{Height: height, Weight: weight}
	return s.calculate(ctx)
}

func (s *State) calculate(ctx context.Context) *bmi.Result {
	m := bmi.Measurement{
		Height: parseNumber(s.input.Height),
		Weight: parseNumber(s.input.Weight),
		Unit:   s.unit,
	}
	r, ok := bmi.Calculate(m)
	if !ok {
		s.result = nil
		return nil
	}
	s.result = &r

	s.history.Append(ctx, r.BMI, m.Height, m.Weight, m.Unit)
	s.tracker.Emit(events.ToolUse, map[string]any{
		"tool_name": toolName,
		"action":    "calculate",
		"bmi_value": r.BMI,
		"unit":      string(m.Unit),
	})
	s.tracker.Emit(events.Calculated, map[string]any{"bmi": r.BMI})

	logrus.WithFields(logrus.Fields{
		"bmi":      r.BMI,
		"category": r.Category,
		"unit":     m.Unit,
	}).Debug("calculated")

	r2 := r
	return &r2
}

// SwitchUnit converts the current input to unit u and recalculates.
// Switching to the active unit does nothing.
func (s *State) SwitchUnit(ctx context.Context, u bmi.Unit) (*bmi.Result, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("invalid unit %q", u)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u == s.unit {
		return s.currentResult(), nil
	}

	converted := bmi.Convert(bmi.Measurement{
		Height: parseNumber(s.input.Height),
		Weight: parseNumber(s.input.Weight),
		Unit:   s.unit,
	}, u)
	s.input = Input{
		Height: formatNumber(converted.Height),
		Weight: formatNumber(converted.Weight),
	}
	s.unit = u

	return s.calculate(ctx), nil
}

// SetLanguage switches the display language once its dictionary is ready.
func (s *State) SetLanguage(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolver.SetLanguage(ctx, code); err != nil {
		return err
	}
	s.tracker.Emit(events.LanguageChanged, map[string]any{"language": code})
	return nil
}

// ClearHistory wipes the history if confirm agrees.
func (s *State) ClearHistory(ctx context.Context, confirm history.ConfirmFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Clear(ctx, confirm) {
		return false
	}
	s.tracker.Emit(events.HistoryCleared, nil)
	return true
}

// Share builds the share message for the current result. method names how
// the caller is going to deliver it. It returns false when there is no
// result to share.
func (s *State) Share(ctx context.Context, method string) (share.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return share.Message{}, false
	}
	msg := share.NewMessage(s.resolver, s.result.BMI)

	s.tracker.Emit(events.Share, map[string]any{
		"method":       method,
		"app_name":     toolName,
		"content_type": "calculation_result",
	})
	s.tracker.Emit(events.Shared, nil)
	return msg, true
}

func (s *State) Snapshot(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Unit:     s.unit,
		Input:    s.input,
		Result:   s.currentResult(),
		History:  s.history.Load(ctx),
		Language: s.resolver.Language(),
		Theme:    s.theme(ctx),
	}
}

func (s *State) currentResult() *bmi.Result {
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// numberPrefix is the longest decimal number a field may start with.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber reads the leading decimal number of s, so "170cm" is 170.
// Input without one is NaN.
func parseNumber(s string) float64 {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// formatNumber prints v the shortest way; NaN and Inf become an empty field.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
