/*
Package engine orchestrates calculation runs over the store.

PURPOSE:
  Ties the two calculation tracks to persistence: load one configuration
  snapshot, run the track's pure calculation over the stored records, and
  upsert the results. Both the HTTP API and the CLI trigger runs through
  this package, so neither reimplements the sequence.

RUN LIFECYCLE:
  Every run gets a UUID and a store.Run row saved up front as "running",
  then updated to "completed" or "failed". A run that cannot load its
  config fails whole; a rep with broken per-title configuration fails
  alone (surfaced in RepErrors) while the other reps complete.

IDEMPOTENCE:
  Result writes are keyed upserts, so triggering the same period twice is
  safe. Transient write failures are retried; the retry replays the same
  whole-record upsert.

SEE ALSO:
  - quarterly/scorer.go, monthly/engine.go: The pure calculations
  - store/store.go: The persistence contracts
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"
)

// upsert retry policy for transient store failures
const (
	writeAttempts = 3
	writeBackoff  = 100 * time.Millisecond
)

// Engine runs calculations against a store.
type Engine struct {
	st  store.Store
	log *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{st: st, log: log}
}

// =============================================================================
// QUARTERLY RUNS
// =============================================================================

// QuarterlyResult reports one quarterly run: the run row, the per-rep
// scored results, and per-rep configuration errors.
type QuarterlyResult struct {
	Run     store.Run
	Results []quarterly.RepResult

	// RepErrors maps reps whose titles had broken configuration (missing
	// role scale or budget) to the error. Those reps produced no entries.
	RepErrors map[comp.RepID]string
}

// RunQuarterly calculates one quarter for every rep with imported actuals
// and upserts the resulting entries.
func (e *Engine) RunQuarterly(ctx context.Context, q comp.Quarter) (QuarterlyResult, error) {
	run := e.startRun(ctx, store.RunQuarterly, q.String())
	log := e.log.With(zap.String("run_id", run.ID), zap.String("quarter", q.String()))
	log.Info("quarterly run started")

	out := QuarterlyResult{Run: run, RepErrors: make(map[comp.RepID]string)}

	cfg, err := e.st.GetQuarterlyConfig(ctx, q)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading config: %w", err))
	}

	scorer, err := quarterly.NewScorer(cfg)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("validating config: %w", err))
	}

	actuals, err := e.st.RepActualsForQuarter(ctx, q)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading actuals: %w", err))
	}

	now := time.Now().UTC()
	total := comp.ZeroMoney()
	var entries []quarterly.CommissionEntry

	for _, a := range actuals {
		res, err := scorer.ScoreRep(a, now)
		if err != nil {
			// Broken per-title config fails this rep only.
			out.RepErrors[a.Rep] = err.Error()
			log.Warn("rep skipped", zap.String("rep", string(a.Rep)), zap.Error(err))
			continue
		}
		out.Results = append(out.Results, res)
		entries = append(entries, res.Entries...)
		total = total.Add(res.TotalPayout)
	}

	if err := e.withRetry(ctx, log, func() error {
		return e.st.UpsertQuarterlyEntries(ctx, entries)
	}); err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("writing entries: %w", err))
	}

	out.Run.RecordsProcessed = len(actuals)
	out.Run.RecordsWritten = len(entries)
	out.Run.TotalPaid = total
	e.completeRun(ctx, &out.Run, log)

	log.Info("quarterly run completed",
		zap.Int("reps", len(actuals)),
		zap.Int("entries", len(entries)),
		zap.Int("rep_errors", len(out.RepErrors)),
		zap.String("total_paid", total.String()))
	return out, nil
}

// =============================================================================
// MONTHLY RUNS
// =============================================================================

// MonthlyResult reports one monthly run.
type MonthlyResult struct {
	Run     store.Run
	Summary monthly.Summary
}

// RunMonthly calculates one month's commissions over the stored orders and
// upserts the resulting records.
func (e *Engine) RunMonthly(ctx context.Context, m comp.CalendarMonth) (MonthlyResult, error) {
	run := e.startRun(ctx, store.RunMonthly, m.String())
	log := e.log.With(zap.String("run_id", run.ID), zap.String("month", m.String()))
	log.Info("monthly run started")

	out := MonthlyResult{Run: run}

	snap, err := e.st.GetMonthlySnapshot(ctx, m)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading snapshot: %w", err))
	}

	orders, err := e.st.OrdersForMonth(ctx, m)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading orders: %w", err))
	}
	customers, err := e.st.Customers(ctx)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading customers: %w", err))
	}
	titles, err := e.st.RepTitles(ctx)
	if err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("loading rep titles: %w", err))
	}

	records, summary := monthly.NewEngine(snap).Calculate(orders, customers, titles, time.Now().UTC())
	out.Summary = summary

	if err := e.withRetry(ctx, log, func() error {
		return e.st.UpsertCommissionRecords(ctx, records)
	}); err != nil {
		return out, e.failRun(ctx, &out.Run, log, fmt.Errorf("writing records: %w", err))
	}

	out.Run.RecordsProcessed = summary.OrdersProcessed
	out.Run.RecordsWritten = len(records)
	out.Run.TotalPaid = summary.TotalCommission
	out.Run.Skipped = summary.Skipped
	e.completeRun(ctx, &out.Run, log)

	log.Info("monthly run completed",
		zap.Int("orders", summary.OrdersProcessed),
		zap.Int("records", len(records)),
		zap.String("total_commission", summary.TotalCommission.String()))
	return out, nil
}

// =============================================================================
// RUN BOOKKEEPING
// =============================================================================

func (e *Engine) startRun(ctx context.Context, kind store.RunKind, period string) store.Run {
	run := store.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Period:    period,
		Status:    store.RunRunning,
		TotalPaid: comp.ZeroMoney(),
		StartedAt: time.Now().UTC(),
	}
	if err := e.st.SaveRun(ctx, run); err != nil {
		e.log.Warn("failed to record run start", zap.String("run_id", run.ID), zap.Error(err))
	}
	return run
}

func (e *Engine) completeRun(ctx context.Context, run *store.Run, log *zap.Logger) {
	now := time.Now().UTC()
	run.Status = store.RunCompleted
	run.CompletedAt = &now
	if err := e.st.SaveRun(ctx, *run); err != nil {
		log.Warn("failed to record run completion", zap.Error(err))
	}
}

func (e *Engine) failRun(ctx context.Context, run *store.Run, log *zap.Logger, err error) error {
	now := time.Now().UTC()
	run.Status = store.RunFailed
	run.Error = err.Error()
	run.CompletedAt = &now
	if saveErr := e.st.SaveRun(ctx, *run); saveErr != nil {
		log.Warn("failed to record run failure", zap.Error(saveErr))
	}
	log.Error("run failed", zap.Error(err))
	return err
}

// withRetry replays a keyed upsert on transient failure. The upsert is
// idempotent, so replaying a partially applied batch is safe.
func (e *Engine) withRetry(ctx context.Context, log *zap.Logger, fn func() error) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == writeAttempts {
			break
		}
		log.Warn("write failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(writeBackoff * time.Duration(attempt)):
		}
	}
	return err
}
