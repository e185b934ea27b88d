/*
Package store defines the persistence interfaces for the commission engine.

PURPOSE:
  Separates the calculation packages (quarterly, monthly) from how their
  inputs and outputs are persisted. The engine reads configuration and
  records through these interfaces and writes results back through them;
  it never touches a database directly.

KEY INTERFACES:
  ConfigStore: Quarterly configs and monthly snapshots, keyed by period
  RecordStore: Imported reps, customers, orders, and quarterly actuals
  ResultStore: Calculated output with idempotent keyed upserts, plus runs

IDEMPOTENT RESULTS:
  Re-running a period must never duplicate output. ResultStore writes are
  keyed upserts:
  - monthly records on (order id, period)
  - quarterly entries on (rep, bucket, quarter)
  The same run repeated replaces rows in place.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite (WAL, schema-on-open)
  - store/memory: In-memory maps for tests and demo scenarios

SEE ALSO:
  - engine/: The orchestration layer consuming these interfaces
*/
package store

import (
	"context"
	"time"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
)

// =============================================================================
// CONFIG STORE
// =============================================================================

// ConfigStore persists the per-period configuration snapshots. Reads for a
// missing period return comp.ErrConfigNotFound.
type ConfigStore interface {
	// SaveQuarterlyConfig upserts the config for its quarter.
	SaveQuarterlyConfig(ctx context.Context, cfg quarterly.Config) error

	// GetQuarterlyConfig loads the config for a quarter.
	GetQuarterlyConfig(ctx context.Context, q comp.Quarter) (quarterly.Config, error)

	// SaveMonthlySnapshot upserts the snapshot for its month.
	SaveMonthlySnapshot(ctx context.Context, snap monthly.Snapshot) error

	// GetMonthlySnapshot loads the snapshot for a month.
	GetMonthlySnapshot(ctx context.Context, m comp.CalendarMonth) (monthly.Snapshot, error)
}

// =============================================================================
// RECORD STORE - Imported input data
// =============================================================================

// Rep is a stored sales representative.
type Rep struct {
	ID     comp.RepID
	Name   string
	Title  comp.Title
	Active bool
}

// RecordStore persists imported input records: who sells, to whom, and
// what was sold. Saves are upserts keyed by the natural ID.
type RecordStore interface {
	SaveReps(ctx context.Context, reps []Rep) error
	Reps(ctx context.Context) ([]Rep, error)

	// RepTitles returns the title lookup for active reps.
	RepTitles(ctx context.Context) (monthly.RepTitles, error)

	SaveCustomers(ctx context.Context, customers []monthly.Customer) error
	Customers(ctx context.Context) (map[comp.CustomerID]monthly.Customer, error)

	SaveOrders(ctx context.Context, orders []monthly.OrderRecord) error

	// OrdersForMonth returns the orders dated within a calendar month.
	OrdersForMonth(ctx context.Context, m comp.CalendarMonth) ([]monthly.OrderRecord, error)

	// SaveRepActuals upserts one quarter's imported actuals per rep.
	SaveRepActuals(ctx context.Context, q comp.Quarter, actuals []quarterly.RepActuals) error

	// RepActualsForQuarter returns the imported actuals for a quarter.
	RepActualsForQuarter(ctx context.Context, q comp.Quarter) ([]quarterly.RepActuals, error)
}

// =============================================================================
// RESULT STORE - Calculated output
// =============================================================================

// RunKind labels which track a calculation run executed.
type RunKind string

const (
	RunQuarterly RunKind = "quarterly"
	RunMonthly   RunKind = "monthly"
)

// RunStatus is the lifecycle state of a calculation run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run records one calculation run for auditability: what ran, over which
// period, and what it produced.
type Run struct {
	ID     string
	Kind   RunKind
	Period string // quarter or month identifier
	Status RunStatus
	Error  string

	RecordsProcessed int
	RecordsWritten   int
	TotalPaid        comp.Money

	// Skipped counts inputs dropped by reason (monthly runs only).
	Skipped map[comp.SkipReason]int

	StartedAt   time.Time
	CompletedAt *time.Time
}

// ResultStore persists calculation output. All result writes are keyed
// upserts so re-running a period replaces rather than duplicates.
type ResultStore interface {
	// UpsertCommissionRecords writes monthly records keyed (order id, period).
	UpsertCommissionRecords(ctx context.Context, records []monthly.CommissionRecord) error

	// CommissionRecordsForMonth returns a month's records, all reps.
	CommissionRecordsForMonth(ctx context.Context, m comp.CalendarMonth) ([]monthly.CommissionRecord, error)

	// CommissionRecordsForRep returns one rep's records for a month.
	CommissionRecordsForRep(ctx context.Context, rep comp.RepID, m comp.CalendarMonth) ([]monthly.CommissionRecord, error)

	// UpsertQuarterlyEntries writes entries keyed (rep, bucket, quarter).
	UpsertQuarterlyEntries(ctx context.Context, entries []quarterly.CommissionEntry) error

	// QuarterlyEntries returns a quarter's entries, all reps.
	QuarterlyEntries(ctx context.Context, q comp.Quarter) ([]quarterly.CommissionEntry, error)

	// QuarterlyEntriesForRep returns one rep's entries for a quarter.
	QuarterlyEntriesForRep(ctx context.Context, rep comp.RepID, q comp.Quarter) ([]quarterly.CommissionEntry, error)

	// SaveRun upserts a run record by ID.
	SaveRun(ctx context.Context, run Run) error

	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]Run, error)
}

// Store is the full persistence surface, as implemented by store/sqlite
// and store/memory.
type Store interface {
	ConfigStore
	RecordStore
	ResultStore
}
