/*
Package memory provides an in-memory implementation of the storage
interfaces, for tests and demo scenarios.

PURPOSE:
  Implements store.Store with plain maps behind a sync.RWMutex. Same keyed
  upsert semantics as store/sqlite, no files, no schema. State disappears
  with the process.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/sqlite: The persistent implementation
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"
)

// Store holds everything in process memory.
type Store struct {
	mu sync.RWMutex

	quarterlyConfigs map[string]quarterly.Config
	monthlySnapshots map[string]monthly.Snapshot

	reps      map[comp.RepID]store.Rep
	customers map[comp.CustomerID]monthly.Customer
	orders    map[comp.OrderID]monthly.OrderRecord
	actuals   map[string]map[comp.RepID]quarterly.RepActuals // quarter -> rep

	commissionRecords map[string]monthly.CommissionRecord  // (order|period)
	quarterlyEntries  map[string]quarterly.CommissionEntry // (rep|quarter|bucket)
	runs              []store.Run
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		quarterlyConfigs:  make(map[string]quarterly.Config),
		monthlySnapshots:  make(map[string]monthly.Snapshot),
		reps:              make(map[comp.RepID]store.Rep),
		customers:         make(map[comp.CustomerID]monthly.Customer),
		orders:            make(map[comp.OrderID]monthly.OrderRecord),
		actuals:           make(map[string]map[comp.RepID]quarterly.RepActuals),
		commissionRecords: make(map[string]monthly.CommissionRecord),
		quarterlyEntries:  make(map[string]quarterly.CommissionEntry),
	}
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (s *Store) SaveQuarterlyConfig(_ context.Context, cfg quarterly.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quarterlyConfigs[cfg.Quarter.String()] = cfg
	return nil
}

func (s *Store) GetQuarterlyConfig(_ context.Context, q comp.Quarter) (quarterly.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.quarterlyConfigs[q.String()]
	if !ok {
		return quarterly.Config{}, comp.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *Store) SaveMonthlySnapshot(_ context.Context, snap monthly.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthlySnapshots[snap.Month.String()] = snap
	return nil
}

func (s *Store) GetMonthlySnapshot(_ context.Context, m comp.CalendarMonth) (monthly.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.monthlySnapshots[m.String()]
	if !ok {
		return monthly.Snapshot{}, comp.ErrConfigNotFound
	}
	return snap, nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) SaveReps(_ context.Context, reps []store.Rep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reps {
		s.reps[r.ID] = r
	}
	return nil
}

func (s *Store) Reps(_ context.Context) ([]store.Rep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Rep, 0, len(s.reps))
	for _, r := range s.reps {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RepTitles(_ context.Context) (monthly.RepTitles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make(monthly.RepTitles, len(s.reps))
	for id, r := range s.reps {
		if r.Active {
			titles[id] = r.Title
		}
	}
	return titles, nil
}

func (s *Store) SaveCustomers(_ context.Context, customers []monthly.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return nil
}

func (s *Store) Customers(_ context.Context) (map[comp.CustomerID]monthly.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[comp.CustomerID]monthly.Customer, len(s.customers))
	for id, c := range s.customers {
		out[id] = c
	}
	return out, nil
}

func (s *Store) SaveOrders(_ context.Context, orders []monthly.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		s.orders[o.OrderID] = o
	}
	return nil
}

func (s *Store) OrdersForMonth(_ context.Context, m comp.CalendarMonth) ([]monthly.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []monthly.OrderRecord
	for _, o := range s.orders {
		if m.Contains(o.OrderDate) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *Store) SaveRepActuals(_ context.Context, q comp.Quarter, actuals []quarterly.RepActuals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byRep, ok := s.actuals[q.String()]
	if !ok {
		byRep = make(map[comp.RepID]quarterly.RepActuals)
		s.actuals[q.String()] = byRep
	}
	for _, a := range actuals {
		byRep[a.Rep] = a
	}
	return nil
}

func (s *Store) RepActualsForQuarter(_ context.Context, q comp.Quarter) ([]quarterly.RepActuals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRep := s.actuals[q.String()]
	out := make([]quarterly.RepActuals, 0, len(byRep))
	for _, a := range byRep {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rep < out[j].Rep })
	return out, nil
}

// =============================================================================
// RESULT STORE
// =============================================================================

func (s *Store) UpsertCommissionRecords(_ context.Context, records []monthly.CommissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.commissionRecords[r.Key()] = r
	}
	return nil
}

func (s *Store) CommissionRecordsForMonth(_ context.Context, m comp.CalendarMonth) ([]monthly.CommissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []monthly.CommissionRecord
	for _, r := range s.commissionRecords {
		if r.Period == m {
			out = append(out, r)
		}
	}
	sortCommissionRecords(out)
	return out, nil
}

func (s *Store) CommissionRecordsForRep(_ context.Context, rep comp.RepID, m comp.CalendarMonth) ([]monthly.CommissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []monthly.CommissionRecord
	for _, r := range s.commissionRecords {
		if r.Period == m && r.Rep == rep {
			out = append(out, r)
		}
	}
	sortCommissionRecords(out)
	return out, nil
}

func (s *Store) UpsertQuarterlyEntries(_ context.Context, entries []quarterly.CommissionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.quarterlyEntries[e.Key()] = e
	}
	return nil
}

func (s *Store) QuarterlyEntries(_ context.Context, q comp.Quarter) ([]quarterly.CommissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []quarterly.CommissionEntry
	for _, e := range s.quarterlyEntries {
		if e.Quarter == q {
			out = append(out, e)
		}
	}
	sortQuarterlyEntries(out)
	return out, nil
}

func (s *Store) QuarterlyEntriesForRep(_ context.Context, rep comp.RepID, q comp.Quarter) ([]quarterly.CommissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []quarterly.CommissionEntry
	for _, e := range s.quarterlyEntries {
		if e.Quarter == q && e.Rep == rep {
			out = append(out, e)
		}
	}
	sortQuarterlyEntries(out)
	return out, nil
}

func (s *Store) SaveRun(_ context.Context, run store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.runs {
		if existing.ID == run.ID {
			s.runs[i] = run
			return nil
		}
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *Store) Runs(_ context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Run, len(s.runs))
	copy(out, s.runs)
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Reset drops all stored data. Used by the scenario loader.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quarterlyConfigs = make(map[string]quarterly.Config)
	s.monthlySnapshots = make(map[string]monthly.Snapshot)
	s.reps = make(map[comp.RepID]store.Rep)
	s.customers = make(map[comp.CustomerID]monthly.Customer)
	s.orders = make(map[comp.OrderID]monthly.OrderRecord)
	s.actuals = make(map[string]map[comp.RepID]quarterly.RepActuals)
	s.commissionRecords = make(map[string]monthly.CommissionRecord)
	s.quarterlyEntries = make(map[string]quarterly.CommissionEntry)
	s.runs = nil
	return nil
}

func sortCommissionRecords(records []monthly.CommissionRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].OrderID < records[j].OrderID })
}

func sortQuarterlyEntries(entries []quarterly.CommissionEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rep != entries[j].Rep {
			return entries[i].Rep < entries[j].Rep
		}
		return entries[i].Bucket < entries[j].Bucket
	})
}
