// Package worker consumes domain events, records them as activity and
// optionally exports them to a spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pennypal/internal/amqp"
	"pennypal/internal/core"
	"pennypal/internal/log"
	"pennypal/internal/sheets"
)

// ActivityRecorder persists one event as an activity row.
type ActivityRecorder interface {
	Record(ctx context.Context, ev *amqp.DomainEvent) (core.Activity, error)
}

// ExpenseReader loads the expense an event refers to.
type ExpenseReader interface {
	Get(ctx context.Context, userID string, id int64) (core.Expense, error)
}

// Consumer delivers events to a handler until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker records every event and, when an exporter is set, appends the
// activity row and any newly created expense to the spreadsheet.
type SyncWorker struct {
	recorder ActivityRecorder
	expenses ExpenseReader
	exporter sheets.Exporter
	logger   *log.Logger

	processed     int64
	recordErrors  int64
	exported      int64
	exportErrors  int64
	skippedExport int64
}

// NewSyncWorker builds a worker. exporter may be nil.
func NewSyncWorker(recorder ActivityRecorder, expenses ExpenseReader, exporter sheets.Exporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		recorder: recorder,
		expenses: expenses,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes events until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Worker started", "export_enabled", w.exporter != nil)
	err := consumer.Consume(ctx, w.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume events: %w", err)
	}
	w.logger.InfoContext(ctx, "Worker stopped",
		"processed", atomic.LoadInt64(&w.processed),
		"exported", atomic.LoadInt64(&w.exported),
		"export_errors", atomic.LoadInt64(&w.exportErrors))
	return nil
}

// HandleEvent records ev. A recording failure is returned so the message is
// requeued; export failures are logged only, since the activity row already
// exists and a redelivery would duplicate it.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.DomainEvent) error {
	fields := log.NewFields().WithEntity(ev.UserID, ev.Entity, ev.EntityID)

	activity, err := w.recorder.Record(ctx, ev)
	if err != nil {
		atomic.AddInt64(&w.recordErrors, 1)
		return fmt.Errorf("record %s: %w", ev.RoutingKey(), err)
	}
	atomic.AddInt64(&w.processed, 1)
	w.logger.DebugContext(ctx, "Activity recorded", append(fields.ToSlice(), "action", ev.Action)...)

	if w.exporter == nil {
		return nil
	}
	if err := w.export(ctx, ev, activity); err != nil {
		atomic.AddInt64(&w.exportErrors, 1)
		log.NewStructuredLogger(w.logger).LogError(ctx, "Spreadsheet export failed", err, log.ComponentSheets, log.OpExport, fields)
		return nil
	}
	atomic.AddInt64(&w.exported, 1)
	return nil
}

func (w *SyncWorker) export(ctx context.Context, ev *amqp.DomainEvent, activity core.Activity) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := w.exporter.AppendActivity(gctx, activity); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}
		return nil
	})

	if ev.Entity == core.EntityExpense && ev.Action == core.ActionCreated && w.expenses != nil {
		g.Go(func() error {
			e, err := w.expenses.Get(gctx, ev.UserID, ev.EntityID)
			if errors.Is(err, core.ErrNotFound) {
				// Deleted before the event was consumed.
				atomic.AddInt64(&w.skippedExport, 1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("load expense %d: %w", ev.EntityID, err)
			}
			ref, err := w.exporter.Append(gctx, e)
			if err != nil {
				return fmt.Errorf("append expense %d: %w", e.ID, err)
			}
			w.logger.InfoContext(gctx, "Expense exported", "expense_id", e.ID, "sheets_ref", ref)
			return nil
		})
	}
	return g.Wait()
}

// Metrics is a snapshot of the worker counters.
type Metrics struct {
	Processed     int64
	RecordErrors  int64
	Exported      int64
	ExportErrors  int64
	SkippedExport int64
}

func (w *SyncWorker) GetMetrics() Metrics {
	return Metrics{
		Processed:     atomic.LoadInt64(&w.processed),
		RecordErrors:  atomic.LoadInt64(&w.recordErrors),
		Exported:      atomic.LoadInt64(&w.exported),
		ExportErrors:  atomic.LoadInt64(&w.exportErrors),
		SkippedExport: atomic.LoadInt64(&w.skippedExport),
	}
}
