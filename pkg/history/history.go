// Package history keeps the most recent BMI calculations in a key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/storage"
)

const (
	// Capacity is the maximum number of entries kept.
	Capacity = 10
	// StorageKey is the key the serialized history lives under.
	StorageKey = "bmiHistory"
)

// Entry is one past calculation.
type Entry struct {
	BMI       float64   `json:"bmi"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	Unit      bmi.Unit  `json:"unit"`
	Timestamp time.Time `json:"date"`
}

// ConfirmFunc asks the user whether to go ahead with a destructive action.
type ConfirmFunc func() bool

// Store is an append-only ring buffer of entries, newest first.
//
// Storage errors never reach the caller: unavailable or corrupt data reads
// as an empty history and failed writes are only logged.
type Store struct {
	kv  storage.Store
	now func() time.Time
}

func New(kv storage.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Append records a calculation and returns the resulting history.
func (s *Store) Append(ctx context.Context, bmiValue, height, weight float64, unit bmi.Unit) []Entry {
	entries := s.Load(ctx)

	entry := Entry{
		BMI:       bmiValue,
		Height:    height,
		Weight:    weight,
		Unit:      unit,
		Timestamp: s.now(),
	}
	entries = append([]Entry{entry}, entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}

	b, err := json.Marshal(entries)
	if err != nil {
		logrus.Errorf("failed to encode history: %v", err)
		return entries
	}
	if err := s.kv.Set(ctx, StorageKey, string(b)); err != nil {
		logrus.Warnf("failed to save history: %v", err)
	}

	return entries
}

// Load returns the persisted entries, newest first.
func (s *Store) Load(ctx context.Context) []Entry {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.Warnf("failed to read history: %v", err)
		}
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logrus.Warnf("history is corrupt, treating it as empty: %v", err)
		return []Entry{}
	}
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return entries
}

// Clear deletes the whole history if confirm agrees. It reports whether the
// history was cleared.
func (s *Store) Clear(ctx context.Context, confirm ConfirmFunc) bool {
	if confirm == nil || !confirm() {
		return false
	}
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		logrus.Warnf("failed to clear history: %v", err)
	}
	return true
}
