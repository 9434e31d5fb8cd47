// Package source defines the external record collaborator and its adapters.
// The engine only ever sees RawRecord snapshots and change notifications;
// where the records live (memory, an ICS feed, redis) is an adapter detail.
package source

import (
	"context"
	"sync"

	"gridcal/internal/model"
)

// DataSource is the external record collaborator. Records returns a full
// snapshot; Subscribe registers a change callback and returns its
// unsubscribe function. The selection setters are write-back hooks invoked
// after a date or entity is selected.
type DataSource interface {
	Subscribe(onChange func()) (unsubscribe func())
	Records(ctx context.Context) ([]model.RawRecord, error)
	SetSelectedEntity(ctx context.Context, rec model.RawRecord) error
	SetSelectedDate(ctx context.Context, d model.CalendarDate) error
}

// Memory is an in-process DataSource. SetRecords replaces the collection and
// notifies subscribers. Used by tests and the demo source kind.
type Memory struct {
	mu      sync.Mutex
	records []model.RawRecord
	subs    map[int]func()
	nextSub int

	SelectedEntity model.RawRecord
	SelectedDate   model.CalendarDate
}

func NewMemory(records []model.RawRecord) *Memory {
	return &Memory{
		records: append([]model.RawRecord(nil), records...),
		subs:    map[int]func(){},
	}
}

// SetRecords replaces the collection and fires every subscription callback.
func (m *Memory) SetRecords(records []model.RawRecord) {
	m.mu.Lock()
	m.records = append([]model.RawRecord(nil), records...)
	cbs := make([]func(), 0, len(m.subs))
	for _, cb := range m.subs {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

func (m *Memory) Subscribe(onChange func()) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = onChange
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Memory) Records(_ context.Context) ([]model.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RawRecord(nil), m.records...), nil
}

func (m *Memory) SetSelectedEntity(_ context.Context, rec model.RawRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SelectedEntity = rec
	return nil
}

func (m *Memory) SetSelectedDate(_ context.Context, d model.CalendarDate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SelectedDate = d
	return nil
}
