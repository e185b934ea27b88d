/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store (ConfigStore, RecordStore, ResultStore) using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

IDEMPOTENT RESULT WRITES:
  Unique indexes back the result-store contract:
  - idx_commission_records_key: UNIQUE(order_id, period)
  - idx_quarterly_entries_key:  UNIQUE(rep_id, bucket, quarter)
  Writes use ON CONFLICT DO UPDATE, so re-running a period replaces rows
  in place.

KEY TABLES:
  quarterly_configs:  Config snapshots, JSON blob keyed by quarter
  monthly_snapshots:  Snapshot blobs keyed by month
  reps, customers:    Imported entity records
  orders:             Imported order/line records
  rep_actuals:        Imported quarterly actuals, JSON per (quarter, rep)
  commission_records: Monthly output
  quarterly_entries:  Quarterly output
  runs:               Calculation run audit trail

MONEY AS TEXT:
  All monetary and ratio columns are TEXT holding decimal strings. SQLite
  REAL would reintroduce the float drift the decimal types exist to avoid.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/commissions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Configuration snapshots (JSON blobs keyed by period)
	CREATE TABLE IF NOT EXISTS quarterly_configs (
		quarter TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_snapshots (
		month TEXT PRIMARY KEY,
		snapshot_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Imported entities
	CREATE TABLE IF NOT EXISTS reps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		account_type TEXT NOT NULL DEFAULT '',
		segment TEXT NOT NULL,
		last_order_date TEXT,
		transfer_date TEXT,
		transfer_status TEXT NOT NULL DEFAULT 'auto',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_customers_segment
		ON customers(segment);

	-- Imported orders (one row per order line)
	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		product TEXT NOT NULL,
		category TEXT NOT NULL,
		order_date TEXT NOT NULL,
		order_value TEXT NOT NULL,
		revenue TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Month-window scans are the hot read path for monthly runs
	CREATE INDEX IF NOT EXISTS idx_orders_date
		ON orders(order_date);
	CREATE INDEX IF NOT EXISTS idx_orders_rep
		ON orders(rep_id);

	-- Imported quarterly actuals, one JSON row per (quarter, rep)
	CREATE TABLE IF NOT EXISTS rep_actuals (
		quarter TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		actuals_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(quarter, rep_id)
	);

	-- Monthly output; the unique key makes re-runs replace in place
	CREATE TABLE IF NOT EXISTS commission_records (
		order_id TEXT NOT NULL,
		period TEXT NOT NULL,
		rep_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT '',
		segment TEXT NOT NULL,
		status TEXT NOT NULL,
		base TEXT NOT NULL,
		rate_kind TEXT NOT NULL,
		rate TEXT NOT NULL,
		rate_path TEXT NOT NULL,
		commission TEXT NOT NULL,
		spiffs_json TEXT,
		spiff_bonus TEXT NOT NULL,
		total TEXT NOT NULL,
		calculated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_commission_records_key
		ON commission_records(order_id, period);
	CREATE INDEX IF NOT EXISTS idx_commission_records_period_rep
		ON commission_records(period, rep_id);

	-- Quarterly output; same replace-in-place contract
	CREATE TABLE IF NOT EXISTS quarterly_entries (
		rep_id TEXT NOT NULL,
		quarter TEXT NOT NULL,
		bucket TEXT NOT NULL,
		goal TEXT NOT NULL,
		actual TEXT NOT NULL,
		attainment TEXT NOT NULL,
		weighted_score TEXT NOT NULL,
		payout TEXT NOT NULL,
		calculated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_quarterly_entries_key
		ON quarterly_entries(rep_id, bucket, quarter);
	CREATE INDEX IF NOT EXISTS idx_quarterly_entries_quarter
		ON quarterly_entries(quarter);

	-- Calculation runs (audit trail)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		period TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		records_processed INTEGER NOT NULL DEFAULT 0,
		records_written INTEGER NOT NULL DEFAULT 0,
		total_paid TEXT NOT NULL DEFAULT '0',
		skipped_json TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started
		ON runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONFIG STORE
// =============================================================================

// SaveQuarterlyConfig upserts the config for its quarter.
func (s *Store) SaveQuarterlyConfig(ctx context.Context, cfg quarterly.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode quarterly config: %w", err)
	}

	query := `
		INSERT INTO quarterly_configs (quarter, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(quarter) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, cfg.Quarter.String(), string(blob), now, now)
	return err
}

// GetQuarterlyConfig loads the config for a quarter.
func (s *Store) GetQuarterlyConfig(ctx context.Context, q comp.Quarter) (quarterly.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM quarterly_configs WHERE quarter = ?",
		q.String(),
	).Scan(&blob)

	if err == sql.ErrNoRows {
		return quarterly.Config{}, comp.ErrConfigNotFound
	}
	if err != nil {
		return quarterly.Config{}, err
	}

	var cfg quarterly.Config
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return quarterly.Config{}, fmt.Errorf("failed to decode quarterly config: %w", err)
	}
	return cfg, nil
}

// SaveMonthlySnapshot upserts the snapshot for its month.
func (s *Store) SaveMonthlySnapshot(ctx context.Context, snap monthly.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode monthly snapshot: %w", err)
	}

	query := `
		INSERT INTO monthly_snapshots (month, snapshot_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, snap.Month.String(), string(blob), now, now)
	return err
}

// GetMonthlySnapshot loads the snapshot for a month.
func (s *Store) GetMonthlySnapshot(ctx context.Context, m comp.CalendarMonth) (monthly.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot_json FROM monthly_snapshots WHERE month = ?",
		m.String(),
	).Scan(&blob)

	if err == sql.ErrNoRows {
		return monthly.Snapshot{}, comp.ErrConfigNotFound
	}
	if err != nil {
		return monthly.Snapshot{}, err
	}

	var snap monthly.Snapshot
	if err := json.Unmarshal([]byte(blob), &snap); err != nil {
		return monthly.Snapshot{}, fmt.Errorf("failed to decode monthly snapshot: %w", err)
	}
	return snap, nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

// SaveReps upserts rep records by ID.
func (s *Store) SaveReps(ctx context.Context, reps []store.Rep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO reps (id, name, title, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			active = excluded.active
	`

	now := time.Now().UTC().Format(time.RFC3339)
	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, r := range reps {
			if _, err := tx.ExecContext(ctx, query, r.ID, r.Name, r.Title, r.Active, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reps returns all reps, ordered by ID.
func (s *Store) Reps(ctx context.Context) ([]store.Rep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, title, active FROM reps ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reps []store.Rep
	for rows.Next() {
		var r store.Rep
		if err := rows.Scan(&r.ID, &r.Name, &r.Title, &r.Active); err != nil {
			return nil, err
		}
		reps = append(reps, r)
	}
	return reps, rows.Err()
}

// RepTitles returns the title lookup for active reps.
func (s *Store) RepTitles(ctx context.Context) (monthly.RepTitles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM reps WHERE active = TRUE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(monthly.RepTitles)
	for rows.Next() {
		var id comp.RepID
		var title comp.Title
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

// SaveCustomers upserts customer records by ID.
func (s *Store) SaveCustomers(ctx context.Context, customers []monthly.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO customers (id, account_type, segment, last_order_date, transfer_date, transfer_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_type = excluded.account_type,
			segment = excluded.segment,
			last_order_date = excluded.last_order_date,
			transfer_date = excluded.transfer_date,
			transfer_status = excluded.transfer_status
	`

	now := time.Now().UTC().Format(time.RFC3339)
	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, c := range customers {
			if _, err := tx.ExecContext(ctx, query,
				c.ID, c.AccountType, c.Segment,
				nullTime(c.LastOrderDate), nullTime(c.TransferDate),
				string(c.TransferStatus), now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Customers returns all customers keyed by ID.
func (s *Store) Customers(ctx context.Context) (map[comp.CustomerID]monthly.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, account_type, segment, last_order_date, transfer_date, transfer_status FROM customers")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make(map[comp.CustomerID]monthly.Customer)
	for rows.Next() {
		var c monthly.Customer
		var lastOrder, transfer sql.NullString
		var status string
		if err := rows.Scan(&c.ID, &c.AccountType, &c.Segment, &lastOrder, &transfer, &status); err != nil {
			return nil, err
		}
		c.LastOrderDate = parseNullTime(lastOrder)
		c.TransferDate = parseNullTime(transfer)
		c.TransferStatus = comp.ParseTransferStatus(status)
		customers[c.ID] = c
	}
	return customers, rows.Err()
}

// SaveOrders upserts order records by order ID.
func (s *Store) SaveOrders(ctx context.Context, orders []monthly.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO orders (order_id, customer_id, rep_id, product, category, order_date, order_value, revenue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			rep_id = excluded.rep_id,
			product = excluded.product,
			category = excluded.category,
			order_date = excluded.order_date,
			order_value = excluded.order_value,
			revenue = excluded.revenue
	`

	now := time.Now().UTC().Format(time.RFC3339)
	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, o := range orders {
			if _, err := tx.ExecContext(ctx, query,
				o.OrderID, o.Customer, o.Rep, o.Product, string(o.Category),
				o.OrderDate.UTC().Format(time.RFC3339),
				o.OrderValue.Value.String(), o.Revenue.Value.String(), now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// OrdersForMonth returns the orders dated within a calendar month.
func (s *Store) OrdersForMonth(ctx context.Context, m comp.CalendarMonth) ([]monthly.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT order_id, customer_id, rep_id, product, category, order_date, order_value, revenue
		FROM orders
		WHERE order_date >= ? AND order_date < ?
		ORDER BY order_date ASC, order_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		m.Start().Format(time.RFC3339),
		m.Next().Start().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []monthly.OrderRecord
	for rows.Next() {
		var o monthly.OrderRecord
		var category, orderDate, orderValue, revenue string
		if err := rows.Scan(&o.OrderID, &o.Customer, &o.Rep, &o.Product,
			&category, &orderDate, &orderValue, &revenue); err != nil {
			return nil, err
		}
		o.Category = monthly.ProductCategory(category)
		o.OrderDate, _ = time.Parse(time.RFC3339, orderDate)
		o.OrderValue = parseMoney(orderValue)
		o.Revenue = parseMoney(revenue)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SaveRepActuals upserts one quarter's imported actuals per rep.
func (s *Store) SaveRepActuals(ctx context.Context, q comp.Quarter, actuals []quarterly.RepActuals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rep_actuals (quarter, rep_id, actuals_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(quarter, rep_id) DO UPDATE SET
			actuals_json = excluded.actuals_json
	`

	now := time.Now().UTC().Format(time.RFC3339)
	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, a := range actuals {
			blob, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to encode actuals for rep %s: %w", a.Rep, err)
			}
			if _, err := tx.ExecContext(ctx, query, q.String(), a.Rep, string(blob), now); err != nil {
				return err
			}
		}
		return nil
	})
}

// RepActualsForQuarter returns the imported actuals for a quarter.
func (s *Store) RepActualsForQuarter(ctx context.Context, q comp.Quarter) ([]quarterly.RepActuals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT actuals_json FROM rep_actuals WHERE quarter = ? ORDER BY rep_id",
		q.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actuals []quarterly.RepActuals
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var a quarterly.RepActuals
		if err := json.Unmarshal([]byte(blob), &a); err != nil {
			return nil, fmt.Errorf("failed to decode rep actuals: %w", err)
		}
		actuals = append(actuals, a)
	}
	return actuals, rows.Err()
}

// =============================================================================
// RESULT STORE
// =============================================================================

// UpsertCommissionRecords writes monthly records keyed (order id, period).
func (s *Store) UpsertCommissionRecords(ctx context.Context, records []monthly.CommissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO commission_records
		(order_id, period, rep_id, customer_id, account_type, segment, status,
		 base, rate_kind, rate, rate_path, commission, spiffs_json, spiff_bonus, total, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id, period) DO UPDATE SET
			rep_id = excluded.rep_id,
			customer_id = excluded.customer_id,
			account_type = excluded.account_type,
			segment = excluded.segment,
			status = excluded.status,
			base = excluded.base,
			rate_kind = excluded.rate_kind,
			rate = excluded.rate,
			rate_path = excluded.rate_path,
			commission = excluded.commission,
			spiffs_json = excluded.spiffs_json,
			spiff_bonus = excluded.spiff_bonus,
			total = excluded.total,
			calculated_at = excluded.calculated_at
	`

	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			spiffs, err := json.Marshal(r.AppliedSpiffs)
			if err != nil {
				return fmt.Errorf("failed to encode spiffs for order %s: %w", r.OrderID, err)
			}
			if _, err := tx.ExecContext(ctx, query,
				r.OrderID, r.Period.String(), r.Rep, r.Customer, r.AccountType,
				r.Segment, string(r.Status),
				r.Base.Value.String(), string(r.RateKind), r.Rate.Value.String(),
				string(r.RatePath), r.Commission.Value.String(),
				string(spiffs), r.SpiffBonus.Value.String(), r.Total.Value.String(),
				r.CalculatedAt.UTC().Format(time.RFC3339),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommissionRecordsForMonth returns a month's records, all reps.
func (s *Store) CommissionRecordsForMonth(ctx context.Context, m comp.CalendarMonth) ([]monthly.CommissionRecord, error) {
	query := commissionSelect + " WHERE period = ? ORDER BY order_id ASC"
	return s.queryCommissionRecords(ctx, query, m.String())
}

// CommissionRecordsForRep returns one rep's records for a month.
func (s *Store) CommissionRecordsForRep(ctx context.Context, rep comp.RepID, m comp.CalendarMonth) ([]monthly.CommissionRecord, error) {
	query := commissionSelect + " WHERE period = ? AND rep_id = ? ORDER BY order_id ASC"
	return s.queryCommissionRecords(ctx, query, m.String(), rep)
}

const commissionSelect = `
	SELECT order_id, period, rep_id, customer_id, account_type, segment, status,
	       base, rate_kind, rate, rate_path, commission, spiffs_json, spiff_bonus, total, calculated_at
	FROM commission_records`

func (s *Store) queryCommissionRecords(ctx context.Context, query string, args ...any) ([]monthly.CommissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []monthly.CommissionRecord
	for rows.Next() {
		var r monthly.CommissionRecord
		var period, status, base, rateKind, rate, ratePath, commission, spiffBonus, total, calculatedAt string
		var spiffs sql.NullString

		if err := rows.Scan(&r.OrderID, &period, &r.Rep, &r.Customer, &r.AccountType,
			&r.Segment, &status, &base, &rateKind, &rate, &ratePath, &commission,
			&spiffs, &spiffBonus, &total, &calculatedAt); err != nil {
			return nil, err
		}

		r.Period, _ = comp.ParseMonth(period)
		r.Status = comp.CustomerStatus(status)
		r.Base = parseMoney(base)
		r.RateKind = monthly.RateKind(rateKind)
		r.Rate = parseRatio(rate)
		r.RatePath = monthly.RatePath(ratePath)
		r.Commission = parseMoney(commission)
		r.SpiffBonus = parseMoney(spiffBonus)
		r.Total = parseMoney(total)
		r.CalculatedAt, _ = time.Parse(time.RFC3339, calculatedAt)
		if spiffs.Valid && spiffs.String != "" {
			json.Unmarshal([]byte(spiffs.String), &r.AppliedSpiffs)
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

// UpsertQuarterlyEntries writes entries keyed (rep, bucket, quarter).
func (s *Store) UpsertQuarterlyEntries(ctx context.Context, entries []quarterly.CommissionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO quarterly_entries
		(rep_id, quarter, bucket, goal, actual, attainment, weighted_score, payout, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rep_id, bucket, quarter) DO UPDATE SET
			goal = excluded.goal,
			actual = excluded.actual,
			attainment = excluded.attainment,
			weighted_score = excluded.weighted_score,
			payout = excluded.payout,
			calculated_at = excluded.calculated_at
	`

	return s.execBatch(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, query,
				e.Rep, e.Quarter.String(), e.Bucket,
				e.Goal.Value.String(), e.Actual.Value.String(),
				e.Attainment.Value.String(), e.WeightedScore.Value.String(),
				e.Payout.Value.String(),
				e.CalculatedAt.UTC().Format(time.RFC3339),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// QuarterlyEntries returns a quarter's entries, all reps.
func (s *Store) QuarterlyEntries(ctx context.Context, q comp.Quarter) ([]quarterly.CommissionEntry, error) {
	query := quarterlySelect + " WHERE quarter = ? ORDER BY rep_id ASC, bucket ASC"
	return s.queryQuarterlyEntries(ctx, query, q.String())
}

// QuarterlyEntriesForRep returns one rep's entries for a quarter.
func (s *Store) QuarterlyEntriesForRep(ctx context.Context, rep comp.RepID, q comp.Quarter) ([]quarterly.CommissionEntry, error) {
	query := quarterlySelect + " WHERE quarter = ? AND rep_id = ? ORDER BY bucket ASC"
	return s.queryQuarterlyEntries(ctx, query, q.String(), rep)
}

const quarterlySelect = `
	SELECT rep_id, quarter, bucket, goal, actual, attainment, weighted_score, payout, calculated_at
	FROM quarterly_entries`

func (s *Store) queryQuarterlyEntries(ctx context.Context, query string, args ...any) ([]quarterly.CommissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []quarterly.CommissionEntry
	for rows.Next() {
		var e quarterly.CommissionEntry
		var quarter, goal, actual, attainment, weighted, payout, calculatedAt string

		if err := rows.Scan(&e.Rep, &quarter, &e.Bucket, &goal, &actual,
			&attainment, &weighted, &payout, &calculatedAt); err != nil {
			return nil, err
		}

		e.Quarter, _ = comp.ParseQuarter(quarter)
		e.Goal = parseMoney(goal)
		e.Actual = parseMoney(actual)
		e.Attainment = parseRatio(attainment)
		e.WeightedScore = parseRatio(weighted)
		e.Payout = parseMoney(payout)
		e.CalculatedAt, _ = time.Parse(time.RFC3339, calculatedAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveRun upserts a run record by ID.
func (s *Store) SaveRun(ctx context.Context, run store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped, err := json.Marshal(run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to encode skip counts: %w", err)
	}

	query := `
		INSERT INTO runs
		(id, kind, period, status, error, records_processed, records_written,
		 total_paid, skipped_json, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			records_processed = excluded.records_processed,
			records_written = excluded.records_written,
			total_paid = excluded.total_paid,
			skipped_json = excluded.skipped_json,
			completed_at = excluded.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, string(run.Kind), run.Period, string(run.Status), run.Error,
		run.RecordsProcessed, run.RecordsWritten,
		run.TotalPaid.Value.String(), string(skipped),
		run.StartedAt.UTC().Format(time.RFC3339),
		nullTime(run.CompletedAt),
	)
	return err
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, kind, period, status, error, records_processed, records_written,
		       total_paid, skipped_json, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var r store.Run
		var kind, status, totalPaid, startedAt string
		var skipped, completedAt sql.NullString

		if err := rows.Scan(&r.ID, &kind, &r.Period, &status, &r.Error,
			&r.RecordsProcessed, &r.RecordsWritten, &totalPaid,
			&skipped, &startedAt, &completedAt); err != nil {
			return nil, err
		}

		r.Kind = store.RunKind(kind)
		r.Status = store.RunStatus(status)
		r.TotalPaid = parseMoney(totalPaid)
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.CompletedAt = parseNullTime(completedAt)
		if skipped.Valid && skipped.String != "" && skipped.String != "null" {
			json.Unmarshal([]byte(skipped.String), &r.Skipped)
		}

		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"commission_records", "quarterly_entries", "runs",
		"orders", "rep_actuals", "customers", "reps",
		"quarterly_configs", "monthly_snapshots",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// execBatch runs fn inside one database transaction. Callers hold the
// write lock.
func (s *Store) execBatch(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseMoney(s string) comp.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return comp.ZeroMoney()
	}
	return comp.Money{Value: d}
}

func parseRatio(s string) comp.Ratio {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return comp.ZeroRatio()
	}
	return comp.Ratio{Value: d}
}
