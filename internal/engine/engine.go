// Package engine owns the pipeline: it binds the navigation state, the view
// assembler and the record source, keeps the latest record snapshot, and
// raises notifications to the host.
//
// All derived structures are rebuilt wholesale from the snapshot; nothing is
// patched in place. The snapshot itself is guarded by a mutex because the
// source's change callback may arrive on a foreign goroutine, and installs
// are last-write-wins: when several reads are in flight only the most recent
// one may publish its result.
package engine

import (
	"context"
	"sync"

	"gridcal/internal/bucket"
	appLog "gridcal/internal/log"
	"gridcal/internal/model"
	"gridcal/internal/nav"
	"gridcal/internal/source"
	"gridcal/internal/view"
)

// Notifier receives the events the engine raises to its host. Implementations
// must not call back into the engine synchronously.
type Notifier interface {
	DateClicked(model.Bucket)
	ItemClicked(model.PlacedEvent)
	PeriodChanged(unit nav.Unit, reference model.CalendarDate)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) DateClicked(model.Bucket)                   {}
func (NopNotifier) ItemClicked(model.PlacedEvent)              {}
func (NopNotifier) PeriodChanged(nav.Unit, model.CalendarDate) {}

// Engine is the pipeline owner.
type Engine struct {
	asm      *view.Assembler
	src      source.DataSource
	notifier Notifier

	mu      sync.Mutex
	nav     *nav.State
	records []model.RawRecord
	gen     uint64

	unsubscribe func()
}

// New wires an engine to its source. The source subscription is registered
// immediately; call Refresh once to load the initial snapshot, and Close to
// release the subscription.
func New(asm *view.Assembler, src source.DataSource, notifier Notifier, state *nav.State) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if state == nil {
		state = nav.New(nil)
	}
	e := &Engine{
		asm:      asm,
		src:      src,
		notifier: notifier,
		nav:      state,
		records:  []model.RawRecord{},
	}
	e.unsubscribe = src.Subscribe(func() {
		if err := e.Refresh(context.Background()); err != nil {
			appLog.Error("refresh after source change failed", err)
		}
	})
	return e
}

// Close releases the source subscription.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

// Refresh re-reads the full record collection. Only the most recent
// in-flight read installs its snapshot; anything older is discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.gen++
	myGen := e.gen
	e.mu.Unlock()

	records, err := e.src.Records(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != myGen {
		appLog.Debug("discarding stale record snapshot", "generation", myGen, "latest", e.gen)
		return nil
	}
	if records == nil {
		records = []model.RawRecord{}
	}
	e.records = records
	appLog.Info("record snapshot installed", "count", len(records))
	return nil
}

// Grid rebuilds the bucket list for a layout from the latest snapshot. The
// navigation state is copied under the lock so a concurrent Navigate or
// SelectDate cannot mutate it mid-build.
func (e *Engine) Grid(layout model.Layout) ([]model.Bucket, error) {
	e.mu.Lock()
	records := e.records
	state := e.nav.Clone()
	e.mu.Unlock()

	return e.asm.Build(layout, state, records)
}

// Reference returns the current reference date.
func (e *Engine) Reference() model.CalendarDate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Reference
}

// Navigate steps the reference date by whole calendar units and raises
// period-changed.
func (e *Engine) Navigate(unit nav.Unit, delta int) model.CalendarDate {
	e.mu.Lock()
	e.nav.Step(unit, delta)
	ref := e.nav.Reference
	e.mu.Unlock()

	e.notifier.PeriodChanged(unit, ref)
	return ref
}

// GoToToday resets the reference to today, leaving the selection untouched.
func (e *Engine) GoToToday() model.CalendarDate {
	e.mu.Lock()
	e.nav.GoToToday()
	ref := e.nav.Reference
	e.mu.Unlock()

	e.notifier.PeriodChanged(nav.UnitDay, ref)
	return ref
}

// SelectDate records the selection, writes it back to the source and raises
// date-clicked with the bucket for that date.
func (e *Engine) SelectDate(ctx context.Context, d model.CalendarDate) error {
	e.mu.Lock()
	e.nav.Select(d)
	records := e.records
	e.mu.Unlock()

	if err := e.src.SetSelectedDate(ctx, d); err != nil {
		return err
	}

	b := model.Bucket{Date: d, Selected: true, Events: []model.PlacedEvent{}}
	if events, err := e.asm.Events(records); err == nil {
		b = bucket.ByDay([]model.CalendarDate{d}, events)[0]
		b.Selected = true
	}
	e.notifier.DateClicked(b)
	return nil
}

// SelectEntity records the selected entity, writes it back to the source and
// raises item-clicked with the record's first placed occurrence.
func (e *Engine) SelectEntity(ctx context.Context, rec model.RawRecord) error {
	e.mu.Lock()
	e.nav.SelectEntity(rec)
	records := e.records
	e.mu.Unlock()

	if err := e.src.SetSelectedEntity(ctx, rec); err != nil {
		return err
	}

	clicked := model.PlacedEvent{Source: rec}
	if events, err := e.asm.Events(records); err == nil {
		for _, ev := range events {
			if recordsEqual(ev.Source, rec) {
				clicked = ev
				break
			}
		}
	}
	e.notifier.ItemClicked(clicked)
	return nil
}

func recordsEqual(a, b model.RawRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
